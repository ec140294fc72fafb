package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		log.Error("wallet-store failed", "error", err)
		os.Exit(1)
	}
}

package constants

import "time"

const (
	AppName    = "wallet-store"
	ConfigFile = "config"
	EnvPrefix  = "WALLETSTORE"

	DefaultNetwork      = "mainnet"
	DefaultPollInterval = 4 * time.Second

	DefaultHost = "127.0.0.1"
	DefaultPort = "6140"

	// Digits shown for balances in CLI output.
	DisplayDecimals = 6

	RequestIDHeader = "X-Request-ID"
)

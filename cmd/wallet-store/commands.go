package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/wallet-store/cmd/wallet-store/config"
	"github.com/quantumauth-io/wallet-store/internal/api"
	"github.com/quantumauth-io/wallet-store/internal/constants"
	"github.com/quantumauth-io/wallet-store/internal/networks"
	"github.com/quantumauth-io/wallet-store/internal/provider"
	"github.com/quantumauth-io/wallet-store/internal/store"
	"github.com/quantumauth-io/wallet-store/internal/units"
)

type rootFlags struct {
	providerURL    string
	defaultNetwork string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Wallet connection state for web3 apps",
		Long:          `wallet-store tracks the accounts, chain and balance of an injected wallet and converts between ether units.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.providerURL, "provider-url", "", "wallet JSON-RPC endpoint (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.defaultNetwork, "default-network", "", "fallback network when no wallet is present (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(flags),
		newStatusCmd(flags),
		newBalanceCmd(flags),
		newConvertCmd(),
		newNetworkCmd(),
	)
	return rootCmd
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet store over a local HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info(constants.AppName,
				"version", Version,
				"commit", Commit,
				"build_date", BuildDate,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			s, wallet, closeFn, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if wallet != nil {
				go func() {
					if err := s.Watch(ctx); err != nil {
						log.Error("provider watch stopped", "error", err)
					}
				}()
				go wallet.PollEvery(ctx, cfg.Wallet.PollInterval)
			}

			addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(api.NewHandler(s), cfg.Server.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				log.Info("HTTP server listening", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server error", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			log.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown failed", "error", err)
				return err
			}
			log.Info("HTTP server gracefully stopped")
			return nil
		},
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Connect to the wallet and print its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			s, _, closeFn, err := buildStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			details, err := s.InitializeWeb3(cmd.Context())
			if err != nil {
				return err
			}
			if details.ChainIDErr != nil {
				log.Warn("chain id unavailable", "error", details.ChainIDErr)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s.Snapshot())
		},
	}
}

func newBalanceCmd(flags *rootFlags) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the balance of the active account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			s, _, closeFn, err := buildStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := s.InitializeWeb3(cmd.Context()); err != nil {
				return err
			}

			bal, err := s.RefreshAccountBalance(cmd.Context())
			if err != nil {
				return err
			}

			shown := units.FormatUnitsTrim(bal.Wei, units.EtherDecimals, constants.DisplayDecimals)
			if full {
				shown = bal.Ether
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s ETH\n", bal.Address, shown)
			return err
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print every decimal")
	return cmd
}

func newConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between ether and wei",
	}

	convertCmd.AddCommand(&cobra.Command{
		Use:   "to-wei <ether>",
		Short: "Convert an ether amount to wei",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wei, err := units.ParseEther(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), wei.String())
			return err
		},
	})

	convertCmd.AddCommand(&cobra.Command{
		Use:   "to-ether <wei>",
		Short: "Convert a wei amount to ether",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ether, err := units.WeiToEther(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ether)
			return err
		},
	})

	return convertCmd
}

func newNetworkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "network <chainId>",
		Short: "Print the network name for a chain id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := networks.Name(args[0])
			if name == "" {
				return fmt.Errorf("unknown chain id %q", args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), name)
			return err
		},
	}
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if v := strings.TrimSpace(flags.providerURL); v != "" {
		cfg.Wallet.ProviderURL = v
	}
	if v := strings.TrimSpace(flags.defaultNetwork); v != "" {
		cfg.Wallet.DefaultNetwork = strings.ToLower(v)
	}
	return cfg, nil
}

// buildStore dials the configured wallet, if any, and constructs the store.
// The returned provider is nil when no wallet is configured; closeFn
// releases both.
func buildStore(ctx context.Context, cfg *config.Config) (*store.WalletStore, *provider.RPCProvider, func(), error) {
	opts := store.Options{
		DefaultNetwork: cfg.Wallet.DefaultNetwork,
		Endpoints:      cfg.Networks,
	}

	var wallet *provider.RPCProvider
	if cfg.Wallet.ProviderURL != "" {
		var err error
		wallet, err = provider.Dial(ctx, cfg.Wallet.ProviderURL)
		if err != nil {
			return nil, nil, nil, err
		}
		opts.Provider = wallet
	} else {
		log.Warn("no wallet provider configured; using read-only default network", "network", cfg.Wallet.DefaultNetwork)
	}

	s, err := store.New(ctx, opts)
	if err != nil {
		if wallet != nil {
			wallet.Close()
		}
		return nil, nil, nil, err
	}

	closeFn := func() {
		s.Close()
		if wallet != nil {
			wallet.Close()
		}
	}
	return s, wallet, closeFn, nil
}

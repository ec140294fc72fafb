package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/wallet-store/internal/constants"
)

//go:embed config.yaml
var EmbeddedConfigYAML []byte

type WalletSettings struct {
	ProviderURL    string
	DefaultNetwork string
	// how often serve asks the wallet for account and chain changes
	PollInterval time.Duration
}

type ServerSettings struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type Config struct {
	Wallet WalletSettings
	// network name -> public rpc url
	Networks map[string]string
	Server   ServerSettings
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	return parseWithEmbedded(paths, EmbeddedConfigYAML)
}

// parseWithEmbedded reads the embedded defaults, merges the first config.yaml
// found in paths, then applies WALLETSTORE_* env overrides.
func parseWithEmbedded(paths []string, embedded []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(embedded)); err != nil {
		return nil, errors.Wrap(err, "read embedded config")
	}

	v.SetConfigName(constants.ConfigFile)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "merge config file")
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize trims values, lower-cases network names and fills defaults.
func (c *Config) Normalize() error {
	c.Wallet.ProviderURL = strings.TrimSpace(c.Wallet.ProviderURL)
	c.Wallet.DefaultNetwork = strings.ToLower(strings.TrimSpace(c.Wallet.DefaultNetwork))
	if c.Wallet.DefaultNetwork == "" {
		c.Wallet.DefaultNetwork = constants.DefaultNetwork
	}
	if c.Wallet.PollInterval <= 0 {
		c.Wallet.PollInterval = constants.DefaultPollInterval
	}

	out := make(map[string]string, len(c.Networks))
	for name, url := range c.Networks {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("Networks has empty network name")
		}
		url = strings.TrimSpace(url)
		if url == "" {
			return fmt.Errorf("Networks[%q] has empty url", name)
		}
		out[key] = url
	}
	c.Networks = out

	if strings.TrimSpace(c.Server.Host) == "" {
		c.Server.Host = constants.DefaultHost
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		c.Server.Port = constants.DefaultPort
	}

	origins := c.Server.AllowedOrigins[:0]
	for _, o := range c.Server.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.AllowedOrigins = origins

	return nil
}

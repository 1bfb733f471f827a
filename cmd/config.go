// Package cmd implements the command-line interface for htauto.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables every flag can be set from,
// e.g. HTAUTO_TRADE_PASSWORD.
const EnvPrefix = "HTAUTO"

// Config holds all application configuration
type Config struct {
	ExecutablePath string
	UserID         string
	TradePassword  string
	CommPassword   string
	TimeoutSeconds int
	SkipCleanup    bool
	Hide           bool
	Elevate        bool
	Verbose        bool
	ShowLogs       bool
}

// NewConfigFromFlags layers the parsed flags over HTAUTO_* environment
// variables and the optional --config YAML file. Flags win, then the
// environment, then the file, then flag defaults.
func NewConfigFromFlags(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return &Config{
		ExecutablePath: v.GetString("exe"),
		UserID:         v.GetString("user"),
		TradePassword:  v.GetString("trade-password"),
		CommPassword:   v.GetString("comm-password"),
		TimeoutSeconds: v.GetInt("timeout"),
		SkipCleanup:    v.GetBool("skip-cleanup"),
		Hide:           v.GetBool("hide"),
		Elevate:        v.GetBool("elevate"),
		Verbose:        v.GetBool("verbose"),
		ShowLogs:       v.GetBool("logs"),
	}, nil
}

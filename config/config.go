// Package config loads process configuration for cmd/reactorctl using
// github.com/spf13/viper. Nothing in reactor/provider/port/fsm reads from
// here: the core packages take explicit constructor arguments, and config is
// the outermost layer that turns flags/env/file settings into those
// arguments (SPEC_FULL.md, "Configuration").
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the demo binary's process configuration.
type Config struct {
	// ListenAddr is the address the serve subcommand accepts connections on.
	ListenAddr string `mapstructure:"listen_addr"`
	// DialAddr is the address the dial subcommand connects to.
	DialAddr string `mapstructure:"dial_addr"`
	// Network is "tcp" or "unix".
	Network string `mapstructure:"network"`
	// MsgBufSlots sizes every connection's multipart message buffer.
	MsgBufSlots int `mapstructure:"msgbuf_slots"`
	// BackoffInitial and BackoffMax bound the connector's retry delay.
	BackoffInitial time.Duration `mapstructure:"backoff_initial"`
	BackoffMax     time.Duration `mapstructure:"backoff_max"`
	// LogLevel is one of trace/debug/info/notice/warning/error/crit/alert/emerg.
	LogLevel string `mapstructure:"log_level"`
	// MetricsAddr, if non-empty, serves /metrics on this address.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Defaults returns the baseline configuration before flags/env/file
// overrides are layered on.
func Defaults() Config {
	return Config{
		ListenAddr:     "127.0.0.1:7777",
		DialAddr:       "127.0.0.1:7777",
		Network:        "tcp",
		MsgBufSlots:    1,
		BackoffInitial: 2 * time.Second,
		BackoffMax:     30 * time.Second,
		LogLevel:       "info",
		MetricsAddr:    "",
	}
}

// New builds a viper instance seeded with Defaults, reading REACTORCTL_*
// environment variables and, if present, a config file named by cfgFile
// (empty skips the file read entirely — it's optional for the demo binary).
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	def := Defaults()
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("dial_addr", def.DialAddr)
	v.SetDefault("network", def.Network)
	v.SetDefault("msgbuf_slots", def.MsgBufSlots)
	v.SetDefault("backoff_initial", def.BackoffInitial)
	v.SetDefault("backoff_max", def.BackoffMax)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("metrics_addr", def.MetricsAddr)

	v.SetEnvPrefix("reactorctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Load unmarshals v into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/lattice-io/reactorcore/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reactorctl",
		Short: "Demo CLI driving the reactorcore event monitor",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "optional config file (viper-readable: yaml/json/toml)")
	root.AddCommand(newServeCmd())
	root.AddCommand(newDialCmd())
	return root
}

func loadConfig(fs *cobra.Command) (config.Config, error) {
	v, err := config.New(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := v.BindPFlags(fs.Flags()); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/connector"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/rlog"
)

func newDialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Drive a connector against dial_addr, exercising the backoff retry scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := rlog.New(nil, rlog.LevelFromString(cfg.LogLevel))

			m, err := reactor.New()
			if err != nil {
				return err
			}
			defer m.Close()

			svc := newEchoService(log)()
			cp, err := connector.New(cfg.Network, cfg.DialAddr, svc, nil, cfg.MsgBufSlots)
			if err != nil {
				return err
			}
			cp.SetBackoff(cfg.BackoffInitial, cfg.BackoffMax)
			cp.OnError(func(p *port.Port, err error) {
				log.Warning().Str("err", err.Error()).Log("connect attempt failed, retrying")
			})
			if err := m.Manage(cp); err != nil {
				return err
			}

			log.Info().Str("addr", cfg.DialAddr).Log("dialing")
			return m.Forever()
		},
	}
	cmd.Flags().String("dial_addr", "", "override dial address")
	cmd.Flags().String("network", "", "override network (tcp|unix)")
	return cmd
}

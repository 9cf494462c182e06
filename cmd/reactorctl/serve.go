package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lattice-io/reactorcore/metrics"
	"github.com/lattice-io/reactorcore/port"
	"github.com/lattice-io/reactorcore/provider/acceptor"
	"github.com/lattice-io/reactorcore/reactor"
	"github.com/lattice-io/reactorcore/rlog"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the loopback-echo scenario: accept connections, echo every message back",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := rlog.New(nil, rlog.LevelFromString(cfg.LogLevel))

			ln, addr, err := port.ListenTCP(cfg.ListenAddr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", addr.String()).Log("listening")

			m, err := reactor.New()
			if err != nil {
				return err
			}
			defer m.Close()

			if cfg.MetricsAddr != "" {
				reg := prometheus.NewRegistry()
				coll := metrics.New("reactorcore", "monitor")
				coll.MustRegister(reg)
				m.SetDispatchHook(coll.ObserveDispatch)
				m.SetManagedHook(coll.SetManaged)

				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Err().Str("err", err.Error()).Log("metrics server stopped")
					}
				}()
			}

			ap := acceptor.New(ln, newEchoService(log), nil, cfg.MsgBufSlots)
			ap.OnError(func(p *port.Port, err error) {
				log.Err().Str("err", err.Error()).Log("accept failed")
			})
			if err := m.Manage(ap); err != nil {
				return err
			}

			return m.Forever()
		},
	}
	cmd.Flags().String("listen_addr", "", "override listen address")
	cmd.Flags().Int("msgbuf_slots", 0, "override multipart slot count")
	cmd.Flags().String("metrics_addr", "", "address to serve /metrics on, empty disables")
	return cmd
}

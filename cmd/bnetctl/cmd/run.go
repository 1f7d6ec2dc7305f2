package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bnetrun/bnet/config"
	"github.com/bnetrun/bnet/eventbus"
	"github.com/bnetrun/bnet/scheduler"
	"github.com/bnetrun/bnet/transport/httpapi"
)

var listenAddr string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a config, run the epoch scheduler, and serve the control surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		env := config.LoadEnv(logger)
		path := configPath
		if path == "" {
			path = env.ConfigPath
		}
		if path == "" {
			return fmt.Errorf("no config path given: pass --config or set BNETCTL_CONFIG")
		}

		doc, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		built, err := config.Build(doc, logger)
		if err != nil {
			return fmt.Errorf("building net: %w", err)
		}
		defer built.Pool.Shutdown()

		opts := []scheduler.Option{scheduler.WithLogger(logger)}
		if env.AMQPURL != "" {
			conn, err := eventbus.Dial(env.AMQPURL, env.AMQPExchange)
			if err != nil {
				return fmt.Errorf("connecting to event bus: %w", err)
			}
			defer conn.Close()
			opts = append(opts, scheduler.WithNotifier(eventbus.NewPublisher(conn, env.AMQPExchange)))
			logger.Info("publishing fired-transition events", zap.String("exchange", env.AMQPExchange))
		}

		sched := scheduler.New(built.Net, time.Duration(built.EpochPeriodMs)*time.Millisecond, opts...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- sched.Run(ctx) }()

		srv := &http.Server{Addr: listenAddr, Handler: httpapi.New(built.Net, logger)}
		go func() {
			logger.Info("control surface listening", zap.String("addr", listenAddr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("control surface server stopped", zap.Error(err))
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				logger.Error("scheduler stopped", zap.Error(err))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&listenAddr, "listen", "l", ":8080", "address to serve the control surface on")
}

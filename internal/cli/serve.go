package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reddit-engine/internal/api"
	"reddit-engine/internal/engine"
	"reddit-engine/internal/simulation"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr          string
	SimulateUsers int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the engine and its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.cfg.ListenAddr = opts.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from REDDIT_ENGINE_LISTEN_ADDR)")
	cmd.Flags().IntVar(&opts.SimulateUsers, "simulate-users", 0, "also run an in-process simulation with this many users")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, logger := opts.cfg, opts.logger

	e := engine.Start(engine.WithLogger(logger), engine.WithRequestTimeout(cfg.RequestTimeout))
	defer func() {
		if err := e.Stop(); err != nil {
			logger.Error("stop engine", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewServer(e.Client(), logger, cfg.FeedLimit),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting API server", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if opts.SimulateUsers > 0 {
		g.Go(func() error {
			profile := simulation.DefaultProfile()
			profile.Users = opts.SimulateUsers
			profile.Seed = cfg.Simulation.Seed
			sim, err := simulation.New(e.Client(), profile, logger)
			if err != nil {
				return err
			}
			report, err := sim.Run(gctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			logger.Info("background simulation finished",
				"submitted", report.Submitted(),
				"throughput", report.Engine.Throughput,
			)
			return nil
		})
	}
	return g.Wait()
}

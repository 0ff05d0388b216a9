package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"osrm-travel-tools/internal/api"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /matrix and /pairs over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, teardown, err := setup(cmd)
		if err != nil {
			return err
		}
		defer teardown()

		provider, cleanup, err := buildProvider(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		profile := cfg.Profile
		if profile == "" {
			profile = domain.DefaultProfile
		}
		router := api.NewRouter(provider, profile, cfg.Delay)

		// Timeouts leave room for throttled pairwise requests against a cold cache.
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			obs.L().Info("server listening", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

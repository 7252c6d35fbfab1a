package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZamarianPatrick/plantwatch-backend/api"
	"github.com/ZamarianPatrick/plantwatch-backend/conf"
	"github.com/ZamarianPatrick/plantwatch-backend/ingest"
	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/ZamarianPatrick/plantwatch-backend/metrics"
	"github.com/ZamarianPatrick/plantwatch-backend/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func Command(settings *conf.Settings, version string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				settings.Server.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, version)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides server.listen")
	return cmd
}

// Run serves the backend until ctx is cancelled, then shuts the HTTP server
// down within the configured timeout.
func Run(ctx context.Context, settings *conf.Settings, version string) error {
	log := logging.Module("serve")

	if log.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := settings.Location()
	if err != nil {
		return err
	}

	db, err := store.Open(settings.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(db); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	if settings.Database.SeedDemo {
		seeded, err := store.SeedDemo(ctx, db)
		if err != nil {
			return err
		}
		if seeded {
			log.Info().Msg("empty database seeded with demo data")
		}
	}

	m := metrics.New()
	pipeline := ingest.NewPipeline(db, ingest.NewPhotoStore(settings.Photos.Root),
		ingest.WithLocation(loc),
		ingest.WithMetrics(m),
		ingest.WithRateLimit(settings.Ingest.RateLimit, settings.Ingest.Burst),
	)
	server := api.NewServer(api.Config{
		Version:      version,
		MaxBodyBytes: settings.Server.MaxBodyBytes,
		PhotoRoot:    settings.Photos.Root,
	}, db, pipeline, m)
	httpServer := server.HTTPServer(settings.Server.Listen)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("listen", settings.Server.Listen).Str("version", version).Msg("server started")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

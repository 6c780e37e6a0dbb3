package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/internal/api"
	"github.com/palpiteiro/palpiteiro/pkg/config"
	"github.com/palpiteiro/palpiteiro/pkg/observability"
	"github.com/palpiteiro/palpiteiro/pkg/storage"
	"github.com/palpiteiro/palpiteiro/pkg/storage/mongo"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lineup renders over HTTP",
		Long: `Run the HTTP front end.

GET /lineup renders a lineup and stores it; the response carries the render
id in X-Render-ID and the artifact can be fetched again at /renders/{id}.
Render history lives in MongoDB when storage.mongo_uri is configured.
Otherwise the newest storage.memory_renders renders are kept in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	logger := logFrom(ctx)
	observability.NewLogHooks(logger).Register()
	defer observability.Reset()

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	h := api.New(runner, store, baseOptions(cfg), logger)
	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printSuccess("Listening on %s", styleAccent.Render(cfg.Server.Listen))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	printInfo("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the MongoDB store when configured, else an in-memory one.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.MongoURI == "" {
		return storage.NewMemoryStoreWithCapacity(cfg.Storage.MemoryRenders), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := mongo.NewStore(connectCtx, mongo.Config{
		URI:      cfg.Storage.MongoURI,
		Database: cfg.Storage.MongoDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open render store: %w", err)
	}
	return store, nil
}

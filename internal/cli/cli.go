package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cs2ts/internal/cache"
	"cs2ts/internal/config"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "cs2ts",
		Short: "Convert C# type declarations to TypeScript",
		Long: `Converts classes, structs, interfaces and enums declared in C# source into
TypeScript interfaces, enums and string-literal unions. Method bodies are
ignored; only the declared shape is translated.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(graphCmd())

	return rootCmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openCache returns a memory cache, backed by PostgreSQL when DATABASE_URL
// is set. The returned func releases the pool.
func openCache(ctx context.Context, cfg *config.Config) (*cache.ConversionCache, func(), error) {
	if cfg.DatabaseURL == "" {
		return cache.New(nil), func() {}, nil
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect PostgreSQL")
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, nil, errors.Wrap(err, "ping PostgreSQL")
	}
	log.Info().Msg("Connected to PostgreSQL")

	c := cache.New(pgPool)
	if err := c.EnsureSchema(ctx); err != nil {
		pgPool.Close()
		return nil, nil, err
	}

	return c, pgPool.Close, nil
}

// connectNeo4j opens and verifies a Neo4j driver.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, errors.Wrap(err, "connect Neo4j")
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.Wrap(err, "verify Neo4j connectivity")
	}
	log.Info().Msg("Connected to Neo4j")

	return driver, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/sandbox"
	"github.com/clinic/clinic/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic-server",
		Short:         "Clinic follow-up and statistics API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.Level()).With().Timestamp().Logger()
}

// setup loads config and a logger; commands that touch the database also
// open a pool.
func setup(withPool bool) (*config.Config, zerolog.Logger, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger := newLogger(cfg)
	if !withPool {
		return cfg, logger, nil, nil
	}
	if cfg.UsesMemoryStore() {
		return nil, logger, nil, errors.New("this command needs STORE=postgres")
	}
	pool, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, logger, nil, err
	}
	return cfg, logger, pool, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, pool, err := setup(true)
			if err != nil {
				return err
			}
			defer pool.Close()

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}
			count, err := db.NewMigrator(pool, dir, logger).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, pool, err := setup(true)
			if err != nil {
				return err
			}
			defer pool.Close()

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}
			statuses, err := db.NewMigrator(pool, dir, logger).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert reference or demo data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "roster",
		Short: "Insert the default doctor roster into an empty doctors table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, pool, err := setup(true)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := logger.WithContext(cmd.Context())
			n, err := doctor.NewService(doctor.NewRepoPG(pool)).SeedRoster(ctx, doctor.DefaultRoster)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("Roster already present, nothing inserted.")
				return nil
			}
			fmt.Printf("Inserted %d doctor(s).\n", n)
			return nil
		},
	})

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate reproducible demo visits for the active roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, pool, err := setup(true)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := logger.WithContext(cmd.Context())
			svc := newServices(postgresStores(pool), websocket.NopPublisher{})
			names, err := svc.doctors.ActiveNames(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return errors.New("no active doctors; run `clinic-server seed roster` first")
			}

			seedCfg := sandbox.DefaultSeedConfig()
			seedCfg.Visits, _ = cmd.Flags().GetInt("visits")
			seedCfg.Days, _ = cmd.Flags().GetInt("days")
			seedCfg.Seed, _ = cmd.Flags().GetInt64("seed")
			seedCfg.Doctors = names

			res, err := sandbox.NewSeeder(seedCfg).Load(ctx, svc.visits, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Inserted %d visit(s) from %s to %s.\n", res.Visits, res.FirstDate, res.LastDate)
			return nil
		},
	}
	demoCmd.Flags().Int("visits", 200, "Number of visits to generate")
	demoCmd.Flags().Int("days", 90, "Width of the date window ending today")
	demoCmd.Flags().Int64("seed", 1, "Random seed; the same seed yields the same visits")
	cmd.AddCommand(demoCmd)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st := memoryStores()
	if cfg.UsesMemoryStore() {
		logger.Warn().Msg("running on the in-memory store, data is lost on exit")
	} else {
		pool, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
		st = postgresStores(pool)
	}

	e := newServer(cfg, logger, st)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", cfg.Store).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

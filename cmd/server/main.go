package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maint-logbook/internal/config"
	"maint-logbook/internal/database"
	"maint-logbook/internal/logger"
	"maint-logbook/internal/models"
	"maint-logbook/internal/server"
	"maint-logbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run builds the command tree and executes it with args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var configPath string

	root := &cobra.Command{
		Use:           "maint-logbook",
		Short:         "Facility maintenance daily logbook server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default "+config.DefaultConfigPath+" if present)")
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			return serveHTTP(cmd.Context(), cfg, db)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and seed the admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := bootstrap(configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var (
		email, name, password string
		admin                 bool
	)
	useradd := &cobra.Command{
		Use:   "useradd",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			role := models.RoleMember
			if admin {
				role = models.RoleAdmin
			}
			u, err := service.NewUserService(db).Create(cmd.Context(), service.RegisterInput{
				Email:    email,
				Password: password,
				FullName: name,
			}, role)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	useradd.Flags().StringVar(&email, "email", "", "login email")
	useradd.Flags().StringVar(&name, "name", "", "full name")
	useradd.Flags().StringVar(&password, "password", "", "initial password")
	useradd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = useradd.MarkFlagRequired("email")
	_ = useradd.MarkFlagRequired("password")

	root.AddCommand(serve, migrate, useradd)
	// без подкоманды запускаем сервер
	root.RunE = serve.RunE

	return root.ExecuteContext(ctx)
}

// bootstrap loads config, sets up logging and returns a migrated database.
func bootstrap(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	if cfg.Admin.Email != "" {
		if err := database.SeedAdmin(db, cfg.Admin); err != nil {
			return nil, nil, err
		}
	}
	return cfg, db, nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(cfg, db, slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server.start", "addr", cfg.Addr(), "driver", cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// @title           Kanban API
// @version         1.0
// @description     Task board with a column transition policy, search and board views.
// @host            localhost:8080
// @BasePath        /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban/internal/app"
	"kanban/internal/config"
	dom "kanban/internal/domain"
	"kanban/internal/service"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "kanban",
		Short:   "Kanban board API server",
		Version: Version,
		RunE:    func(cmd *cobra.Command, args []string) error { return serve() },
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Store.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=%s, got %q", config.DriverPostgres, cfg.Store.Driver)
			}
			if err := app.RunMigrations(cfg.PG.DSN); err != nil {
				return err
			}
			log.Printf("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a few sample tasks into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("app init: %w", err)
			}
			defer application.Close(context.Background())

			n, err := seed(cmd.Context(), application.Service())
			if err != nil {
				return err
			}
			log.Printf("seeded %d tasks into %s store", n, cfg.Store.Driver)
			return nil
		},
	}
}

var sampleTasks = []service.CreateInput{
	{Title: "Write onboarding guide", Detail: "Cover local setup and the board workflow", AssignedTo: "Ana", Column: dom.ColumnTodo},
	{Title: "Fix login redirect", AssignedTo: "Bo", Column: dom.ColumnDoing},
	{Title: "Release 1.2", Detail: "Tag and publish changelog", AssignedTo: "Cy", Column: dom.ColumnDone},
	{Title: "Revisit flaky test", AssignedTo: "Ana", Column: dom.ColumnTodo, Status: dom.StatusReassigned},
}

func seed(ctx context.Context, svc *service.TaskService) (int, error) {
	for i, in := range sampleTasks {
		if _, err := svc.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seed %q: %w", in.Title, err)
		}
	}
	return len(sampleTasks), nil
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Printf("config loaded, opening %s store...", cfg.Store.Driver)

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	log.Printf("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		_ = application.Close(context.Background())
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return application.Close(ctx)
}

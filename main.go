// Suggested path: music-stream-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/netutil"
)

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg    *Config
	db     *Database
	media  *MediaStore
	logger *log.Logger
}

// setup loads configuration, opens and migrates the database and prepares
// the media directories.
func setup(ctx context.Context, cmd *cli.Command) (*app, error) {
	cfg, err := LoadConfig(cmd.Root().String("config"))
	if err != nil {
		return nil, err
	}
	logger := NewLogger(os.Stderr, cfg.Log.Level)

	conn, err := openDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := migrateDB(ctx, conn, logger); err != nil {
		conn.Close()
		return nil, err
	}

	media := NewMediaStore(cfg.Media, logger)
	if err := media.Init(); err != nil {
		conn.Close()
		return nil, err
	}
	return &app{cfg: cfg, db: NewDatabase(conn), media: media, logger: logger}, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	if a.logger.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	api := NewAPI(a.cfg, a.db, a.media, a.logger)

	sweeper := NewSweeper(a.db, a.media, a.cfg.Cleanup, a.logger)
	scheduler, err := newScheduler(sweeper, a.cfg.Cleanup, a.logger)
	if err != nil {
		return err
	}
	if api.limiter != nil {
		if _, err := scheduler.AddFunc("@hourly", api.limiter.reset); err != nil {
			return fmt.Errorf("schedule rate limiter reset: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	}
	if a.cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, a.cfg.Server.MaxConnections)
	}

	srv := &http.Server{
		Handler:           api.Router(a.cfg.Media.MaxUploadMB),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	version, err := currentSchemaVersion(ctx, a.db.DB())
	if err != nil {
		return err
	}
	a.logger.Info("database is up to date", "path", a.cfg.Database.Path, "version", version)
	return nil
}

func runCleanup(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	cleanup := a.cfg.Cleanup
	if cmd.Bool("now") {
		cleanup.GraceMinutes = 0
	}
	result, err := NewSweeper(a.db, a.media, cleanup, a.logger).Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "scanned %d files, removed %d\n", result.Scanned, result.Removed)
	return nil
}

func runCreateUser(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	users := NewUserService(a.db, a.media, NewMapper(a.cfg.Location()), a.cfg.Auth, a.logger)
	user, err := users.Register(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "created user %s (%s)\n", user.Email, user.ID)
	return nil
}

func newCLI() *cli.Command {
	return &cli.Command{
		Name:  "music-server",
		Usage: "Music streaming REST backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("MUSIC_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Create or upgrade the database schema",
				Action: runMigrate,
			},
			{
				Name:  "cleanup",
				Usage: "Delete media files no song or playlist references",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "now", Usage: "Ignore the grace period"},
				},
				Action: runCleanup,
			},
			{
				Name:  "create-user",
				Usage: "Create a user account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: runCreateUser,
			},
		},
		DefaultCommand: "serve",
	}
}

func main() {
	if err := newCLI().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

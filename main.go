package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/cppla/minibbs/config"
	"github.com/cppla/minibbs/routes"
	"github.com/cppla/minibbs/store"
	"github.com/cppla/minibbs/utils"
)

func main() {
	app := &cli.App{
		Name:  "minibbs",
		Usage: "a minimal discussion board",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the JSON configuration file",
				Value:   config.DefaultConfigPath,
				EnvVars: []string{"MINIBBS_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or upgrade the database schema and exit",
				Action: migrate,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		utils.Sugar.Fatalf("minibbs: %v", err)
	}
}

// bootstrap loads configuration, starts logging and opens a migrated database.
func bootstrap(c *cli.Context) (config.AppConfig, *gorm.DB, error) {
	cfg := config.LoadFile(c.String("config"))

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	if err := config.EnsureSchema(db); err != nil {
		return cfg, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return cfg, db, nil
}

func migrate(c *cli.Context) error {
	cfg, _, err := bootstrap(c)
	if err != nil {
		return err
	}
	// create the key file on first run so the server starts with a persistent secret
	_ = config.ResolveSecret(cfg, utils.Logger)
	utils.Sugar.Infof("schema is up to date (%s)", cfg.DatabaseDriver)
	return nil
}

func serve(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer utils.Logger.Sync() //nolint:errcheck

	secret := []byte(config.ResolveSecret(cfg, utils.Logger))
	cookie := utils.CookieOptions{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		TTL:    time.Duration(cfg.SessionTTLHours) * time.Hour,
	}

	var sessions utils.SessionStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rc, err := utils.NewRedis(cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rc.Close()
		sessions = utils.NewRedisSessionStore(rc, secret, cookie)
	default:
		sessions = utils.NewCookieSessionStore(secret, cookie)
	}

	r, err := routes.SetupRouter(cfg, store.NewForumStore(db), sessions)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Host, cfg.AppPort)
	utils.Sugar.Infof("Starting server on %s (graceful)", addr)
	return utils.GraceServer(context.Background(), addr, r)
}

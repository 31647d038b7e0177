package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-api/config"
	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/notifier"
	"restaurant-api/routes"
	"restaurant-api/seed"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "restaurant-api",
		Usage: "QR table ordering backend",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "env-file", Value: cli.NewStringSlice(".env"), Usage: "dotenv files to load"},
		},
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP API", Action: serve},
			{Name: "migrate", Usage: "create or update the schema", Action: migrate},
			{Name: "seed", Usage: "load demo staff, menu and tables", Action: seedDB},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("restaurant-api failed")
	}
}

type runtime struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func setup(c *cli.Context) (*runtime, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := config.OpenDB(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.DBDriver).Info("database ready")
	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (rt *runtime) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			rt.log.WithError(err).Warn("database close failed")
		}
	}
}

func migrate(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()
	rt.log.Info("migrations applied")
	return nil
}

func seedDB(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()
	svc := services.New(services.Deps{DB: rt.db, Logger: rt.log, AppDomain: rt.cfg.AppDomain})
	return seed.Run(c.Context, svc, rt.log)
}

func serve(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, log := rt.cfg, rt.log
	gin.SetMode(cfg.GinMode)

	hub := notifier.NewHub(0)
	events, closers, err := config.Notifiers(cfg, hub, log)
	defer closeAll(closers, log)
	if err != nil {
		return err
	}

	svc := services.New(services.Deps{
		DB:                rt.db,
		Notifier:          events,
		Logger:            log,
		StrictTransitions: cfg.StrictTransitions,
		AppDomain:         cfg.AppDomain,
	})
	auth := middleware.NewAuth(cfg.JWTSecret, cfg.JWTTTL, svc.Users)
	h := handlers.New(svc, auth, hub, log)
	h.SecureCookies = cfg.GinMode == gin.ReleaseMode

	router, err := routes.NewRouter(cfg, h, auth, log)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("server running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serveErr:
		return errors.Wrap(err, "failed to start server")
	}

	// end open event streams so Shutdown does not wait on them
	if err := hub.Close(); err != nil {
		log.WithError(err).Warn("event hub close failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Wrap(srv.Shutdown(ctx), "shutdown")
}

func closeAll(closers []io.Closer, log logrus.FieldLogger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("close failed")
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"businessboard/backend/config"
	"businessboard/backend/database"
	"businessboard/backend/domain"
	"businessboard/backend/middlewares"
	"businessboard/backend/routes"
	"businessboard/backend/utils"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore := openStore(ctx, cfg)
	defer closeStore()
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("redis connect")
		}
		defer client.Close()
		st = database.NewCachedStore(st, client, cfg.CacheTTL)
		log.WithField("ttl", cfg.CacheTTL.String()).Info("board cache enabled")
	}

	var notifier domain.Notifier = domain.NopNotifier{}
	if cfg.MailHost != "" {
		notifier = utils.NewMailer(utils.MailConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
		})
	} else {
		log.Info("MAIL_HOST not set, welcome mail disabled")
	}

	svc := domain.NewService(st, domain.Options{
		DefaultPassword: cfg.DefaultUserPassword,
		HashPassword:    utils.HashPassword,
		Notifier:        notifier,
		NotifyTimeout:   cfg.MailTimeout,
		Logger:          log.StandardLogger(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newEngine(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	svc.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (domain.Store, func()) {
	if cfg.Store == "memory" {
		log.Warn("using in-memory store, data is lost on exit")
		return database.NewMemoryStore(), func() {}
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:   cfg.DBMaxConns,
		PreferIPv4: cfg.DBPreferIPv4,
	})
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.WithError(err).Fatal("ensure schema")
	}
	return database.NewPGStore(pool), pool.Close
}

func newEngine(cfg config.Config, svc *domain.Service) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.AccessLog(log.StandardLogger()))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middlewares.Timeout(cfg.RequestTimeout))
	routes.Register(r, svc)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middlewares.RequestIDHeader},
		ExposeHeaders: []string{middlewares.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

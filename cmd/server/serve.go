package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/blog-api/backend/internal/auth"
	"github.com/anonto42/blog-api/backend/internal/middleware"
	"github.com/anonto42/blog-api/backend/internal/repositories"
	"github.com/anonto42/blog-api/backend/internal/router"
	"github.com/anonto42/blog-api/backend/pkg/config"
	"github.com/anonto42/blog-api/backend/pkg/firebase"
	"github.com/anonto42/blog-api/backend/pkg/logger"
	"github.com/anonto42/blog-api/backend/pkg/metrics"
	"github.com/anonto42/blog-api/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	shutdownTimeout      = 10 * time.Second
	rateLimitCleanup     = time.Minute
	rateLimitMaxClients  = 10000
	firebaseObjectPrefix = "pictures/"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the metrics listener",
	RunE:  runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("port", "8080", "Port of the HTTP API")
	flags.String("metrics-port", "9090", "Port serving Prometheus metrics at /metrics")
	flags.Bool("auto-migrate", true, "Migrate the schema before serving")
	flags.String("jwt-secret", config.DefaultJWTSecret, "HMAC secret used to sign tokens")
	flags.Duration("jwt-ttl", 72*time.Hour, "Token lifetime; 0 issues tokens without expiry")
	flags.Int("bcrypt-cost", 10, "bcrypt cost for password hashes")
	flags.String("auth-header", "auth", "Request header carrying the token")
	flags.String("storage-driver", "disk", "Picture storage: disk, gridfs or firebase")
	flags.String("upload-dir", "uploads", "Directory for the disk storage driver")
	flags.String("max-upload-size", "10MiB", "Largest accepted picture; KiB/MiB are binary, KB/MB decimal (e.g. 512KiB, 10MiB)")
	flags.String("mongo-uri", "", "MongoDB URI for the gridfs storage driver")
	flags.String("mongo-database", "blog", "MongoDB database for the gridfs storage driver")
	flags.String("firebase-credentials-path", "", "Service account file for the firebase storage driver")
	flags.String("firebase-storage-bucket", "", "Bucket for the firebase storage driver")
	flags.Float64("rate-limit-rps", 20, "Average requests per second per client IP; 0 disables limiting")
	flags.Int("rate-limit-burst", 40, "Burst size per client IP")
	flags.Bool("trust-proxy", false, "Read the client IP from X-Forwarded-For when the peer is a private or loopback address")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer config.CloseDB(db, log)

	if cfg.AutoMigrate {
		if err := repositories.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("schema migrated")
	}

	blobs, closeBlobs, err := newBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBlobs()

	creds, err := auth.NewCredentials(cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost)
	if err != nil {
		return err
	}

	m := metrics.New()
	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		limiter.StartCleanup(ctx, rateLimitCleanup, rateLimitMaxClients)
	}

	e := router.New(router.Deps{
		DB:          db,
		Blobs:       blobs,
		Credentials: creds,
		Metrics:     m,
		Log:         log,
		Config:      cfg,
		RateLimiter: limiter,
	})

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", echo.WrapHandler(m.Handler()))

	errCh := make(chan error, 2)
	start := func(srv *echo.Echo, addr string) {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}
	go start(e, ":"+cfg.Port)
	go start(metricsServer, ":"+cfg.MetricsPort)

	log.WithFields(logrus.Fields{
		"port":         cfg.Port,
		"metrics_port": cfg.MetricsPort,
		"env":          cfg.Env,
		"storage":      cfg.StorageDriver,
		"version":      Version,
	}).Info("server started")

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.WithError(err).Error("listener failed")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("api shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("metrics shutdown")
	}
	return nil
}

// newBlobStore builds the picture store selected by cfg.StorageDriver and a
// function releasing its connections.
func newBlobStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (storage.BlobStore, func(), error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case "gridfs":
		client, err := config.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, noop, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("using gridfs picture storage")
		return storage.NewGridFSStore(client.Database(cfg.MongoDatabase)), func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.WithError(err).Error("error closing MongoDB connection")
			}
		}, nil
	case "firebase":
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			return nil, noop, err
		}
		bucket, err := app.DefaultBucket()
		if err != nil {
			return nil, noop, err
		}
		log.WithField("bucket", cfg.FirebaseStorageBucket).Info("using firebase picture storage")
		return storage.NewFirebaseStore(bucket, firebaseObjectPrefix), noop, nil
	default:
		store, err := storage.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return nil, noop, err
		}
		log.WithField("dir", cfg.UploadDir).Info("using disk picture storage")
		return store, noop, nil
	}
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/blog-api/backend/pkg/logger"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// InitDB opens the relational database selected by cfg.DatabaseDriver and
// verifies the connection.
func InitDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.NewGormLogger(log, slowQueryThreshold),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.PostgresConnStr), gormCfg)
	case "sqlite":
		db, err = openSQLite(sqliteDSN(cfg.SQLitePath), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DatabaseDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.DatabaseDriver, err)
	}

	log.WithField("driver", cfg.DatabaseDriver).Info("database connection established")
	return db, nil
}

// OpenSQLite opens a private in-memory database with foreign keys enforced.
// name isolates databases from each other within one process.
func OpenSQLite(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	return openSQLite(dsn, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// openSQLite pins the pool to one connection; SQLite serializes writers and
// the pragma must hold on every connection used.
func openSQLite(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// CloseDB closes the underlying connection pool.
func CloseDB(db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("error getting SQL DB from GORM")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("error closing database connection")
		return
	}
	log.Info("database connection closed")
}

// ConnectMongo dials MongoDB and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bloom-monitor/config"
	"bloom-monitor/models"
	"bloom-monitor/repositories"
	"bloom-monitor/repositories/interfaces"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger adapts slog to be used as a GORM logger.
type gormLogger struct {
	slogger *slog.Logger
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}
func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.InfoContext(ctx, msg, "gorm_data", data)
}
func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.WarnContext(ctx, msg, "gorm_data", data)
}
func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.ErrorContext(ctx, msg, "gorm_data", data)
}
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("latency", elapsed.String()),
		slog.String("sql", sql),
		slog.Int64("rows_affected", rows),
	}

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		attrs = append(attrs, slog.Any("error", err))
		l.slogger.LogAttrs(ctx, slog.LevelError, "GORM Trace", attrs...)
	} else {
		l.slogger.LogAttrs(ctx, slog.LevelDebug, "GORM Trace", attrs...)
	}
}

// Database holds the DB connection, its connector, the repositories and the UnitOfWork.
type Database struct {
	DB        *gorm.DB
	UoW       UnitOfWorkInterface
	Connector *Connector
	AssetRepo interfaces.AssetRepositoryInterface
	AlertRepo interfaces.AlertRepositoryInterface
}

// Dialector selects the GORM driver for cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", "postgres":
		return postgres.Open(cfg.PostgresDSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DBPath), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenWith returns an OpenFunc that opens dialector and verifies the pool.
func OpenWith(dialector gorm.Dialector, gormConfig *gorm.Config) OpenFunc {
	return func(ctx context.Context) (*gorm.DB, error) {
		db, err := gorm.Open(dialector, gormConfig)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, err
		}
		return db, nil
	}
}

// NewDatabase connects with bounded retries, migrates the schema and
// initializes repositories. The returned connector is not started.
func NewDatabase(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*Database, error) {
	dbLogger := appLogger.With("component", "database")
	dbLogger.Info("Connecting to database...", "driver", cfg.DBDriver, "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	newGormLogger := &gormLogger{slogger: dbLogger}
	gormConfig := &gorm.Config{
		Logger: newGormLogger.LogMode(logger.Info),
	}

	connector := NewConnector(ConnectorConfigFrom(cfg), OpenWith(dialector, gormConfig), appLogger)
	db, err := connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	dbLogger.Info("Database migration completed successfully")

	return newDatabase(db, connector), nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Asset{}, &models.Reading{}, &models.Alert{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func newDatabase(db *gorm.DB, connector *Connector) *Database {
	return &Database{
		DB:        db,
		UoW:       NewUnitOfWork(db),
		Connector: connector,
		AssetRepo: repositories.NewAssetRepository(db),
		AlertRepo: repositories.NewAlertRepository(db),
	}
}

// Close stops the connector and closes the pool.
func (d *Database) Close() error {
	if d.Connector != nil {
		d.Connector.Stop()
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

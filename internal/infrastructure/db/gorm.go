package db

import (
	"time"

	"bankeu-backend/internal/infrastructure/logging"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogLevel maps LOG_LEVEL onto gorm's logger: SQL tracing only at debug.
func GormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

func OpenGorm(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return openGorm(mysql.Open(dsn), level)
}

// OpenGormWithDialector opens with a caller-built dialector (tests use sqlmock).
func OpenGormWithDialector(d gorm.Dialector) (*gorm.DB, error) {
	return openGorm(d, logger.Warn)
}

func openGorm(d gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	// The pool is tuned before the one explicit ping below.
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(level),
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(d, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	logging.Get().Info().Msg("gorm: connected")
	return db, nil
}

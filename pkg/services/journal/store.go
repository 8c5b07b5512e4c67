package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrBootNotFound is returned when a boot ID is not in the journal.
var ErrBootNotFound = errors.New("boot not found")

// memoryPath selects a private in-memory SQLite database.
const memoryPath = ":memory:"

// Store persists boots with GORM.
// It supports both SQLite and PostgreSQL backends via the same codebase.
type Store struct {
	db     *gorm.DB
	config *DatabaseConfig
}

// Open connects to the configured database and migrates the schema.
func Open(config *DatabaseConfig) (*Store, error) {
	if config == nil {
		config = &DatabaseConfig{}
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		if config.SQLite.Path != memoryPath {
			if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		// WAL lets readers proceed while the single writer holds the lock.
		dsn := config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	switch {
	case config.Type == DatabaseTypePostgres:
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	case config.SQLite.Path == memoryPath:
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Boot{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	return &Store{db: db, config: config}, nil
}

// RecordStart inserts boot. A missing ID or start time is filled in.
func (s *Store) RecordStart(ctx context.Context, boot *Boot) error {
	if boot.ID == "" {
		boot.ID = uuid.New().String()
	}
	if boot.StartedAt.IsZero() {
		boot.StartedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(boot).Error; err != nil {
		return fmt.Errorf("failed to record boot: %w", err)
	}
	return nil
}

// RecordStop stamps the stop time of boot id.
func (s *Store) RecordStop(ctx context.Context, id string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&Boot{}).
		Where("id = ?", id).
		Update("stopped_at", at.UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to record stop: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBootNotFound
	}
	return nil
}

// Get returns boot id.
func (s *Store) Get(ctx context.Context, id string) (*Boot, error) {
	var boot Boot
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&boot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBootNotFound
		}
		return nil, err
	}
	return &boot, nil
}

// Recent returns up to limit boots, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Boot, error) {
	var boots []Boot
	if err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&boots).Error; err != nil {
		return nil, fmt.Errorf("failed to list boots: %w", err)
	}
	return boots, nil
}

// Healthcheck pings the database.
func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}

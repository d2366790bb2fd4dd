package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLCatalogue implements the core.Catalogue interface using a SQL database via GORM
type SQLCatalogue struct {
	db *gorm.DB
}

// Config holds the configuration for SQL database connections
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a default configuration for SQL connections
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    2,
		MaxOpenConns:    4,
		ConnMaxLifetime: time.Hour,
	}
}

// CatalogueFromSQLite opens the catalogue stored in a SQLite file
func CatalogueFromSQLite(dbPath string, config Config, opts ...gorm.Option) (*SQLCatalogue, error) {
	return FromSQL(sqlite.Open(dbPath), config, opts...)
}

// FromSQL creates a new SQL catalogue with the given dialect
func FromSQL(dialect gorm.Dialector, config Config, opts ...gorm.Option) (*SQLCatalogue, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err = db.AutoMigrate(&core.Metric{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLCatalogue{db: db}, nil
}

var _ core.Catalogue = (*SQLCatalogue)(nil)

// SaveMetrics inserts metrics, replacing rows that share the metric key
func (s *SQLCatalogue) SaveMetrics(ctx context.Context, metrics []core.Metric) error {
	if len(metrics) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(metrics, 100)
	if result.Error != nil {
		return fmt.Errorf("failed to save metrics: %w", result.Error)
	}

	return nil
}

// Metrics retrieves the catalogue ordered by metric key, filtered in memory
func (s *SQLCatalogue) Metrics(ctx context.Context, filters ...core.MetricFilter) ([]core.Metric, error) {
	var metrics []core.Metric

	result := s.db.WithContext(ctx).Order("metric").Find(&metrics)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", result.Error)
	}

	return lo.Filter(metrics, func(metric core.Metric, _ int) bool {
		for _, filter := range filters {
			if !filter(metric) {
				return false
			}
		}
		return true
	}), nil
}

// Count returns the number of stored metrics
func (s *SQLCatalogue) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&core.Metric{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count metrics: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *SQLCatalogue) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

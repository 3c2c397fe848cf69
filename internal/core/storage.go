package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mockapi/internal/blob"
	"mockapi/internal/config"
	"mockapi/internal/infra/persistence/memory"
	"mockapi/internal/infra/persistence/mysql"
	"mockapi/internal/infra/persistence/postgres"
	"mockapi/internal/infra/persistence/sqlite"
	"mockapi/internal/retry"
	"mockapi/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMySQL    StorageDriver = "mysql"    // MySQL or MariaDB server
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStudentStore selects a student backend from cfg. The closer releases
// any database handle.
func OpenStudentStore(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (domain.PersistentStore, io.Closer, error) {
	driver := StorageDriver(strings.ToLower(cfg.Driver))
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nopCloser{}, nil
	case StorageSQLite:
		st, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info().Str("path", st.Path()).Msg("sqlite student store opened")
		return st, st, nil
	case StoragePostgres:
		st, err := postgres.NewStore(ctx, cfg.PostgresDSN, serverRetryPolicy(cfg.Retry, logger, driver))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Info().Msg("postgres student store opened")
		return st, st, nil
	case StorageMySQL:
		st, err := mysql.NewStore(ctx, cfg.MySQLDSN, serverRetryPolicy(cfg.Retry, logger, driver))
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql store: %w", err)
		}
		logger.Info().Msg("mysql student store opened")
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}

func serverRetryPolicy(cfg config.RetryConfig, logger zerolog.Logger, driver StorageDriver) retry.Options {
	policy := RetryPolicy(cfg)
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn().Err(err).Str("driver", string(driver)).Int("attempt", attempt).Dur("delay", delay).Msg("database not ready, retrying")
	}
	return policy
}

// RetryPolicy converts configured retry settings into retry options. Zero
// values fall back to retry.DefaultOptions.
func RetryPolicy(cfg config.RetryConfig) retry.Options {
	opts := retry.DefaultOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialDelay > 0 {
		opts.InitialDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		opts.MaxDelay = cfg.MaxDelay
	}
	if cfg.BackoffFactor > 0 {
		opts.BackoffFactor = cfg.BackoffFactor
	}
	if cfg.JitterFactor > 0 {
		opts.JitterFactor = cfg.JitterFactor
	}
	return opts
}

// OpenArchive opens the simulation archive described by cfg. The none driver
// returns a nil store.
func OpenArchive(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	store, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(strings.ToLower(cfg.Driver)),
		FSRoot: cfg.FSRoot,
		S3: blob.S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
			PathStyle:       cfg.S3.PathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return store, nil
}

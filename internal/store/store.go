// Package store persists clients and invoices with gorm on sqlite or postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rezonia/billing/internal/billing"
	"github.com/rezonia/billing/internal/model"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteParams make every sqlite transaction take the write lock at BEGIN, so
// concurrent numbering waits its turn instead of failing on lock upgrade.
var sqliteParams = []string{"_txlock=immediate", "_busy_timeout=5000", "_foreign_keys=1"}

// numberingLockClass namespaces the per-year advisory locks taken while numbering
const numberingLockClass = 0x46414331

// Store implements billing.Repository
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	inTx   bool
}

var _ billing.Repository = (*Store)(nil)

// Open connects to driver with dsn. debug logs every SQL statement.
func Open(driver, dsn string, logger *zap.Logger, debug bool) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	return New(db, logger), nil
}

// New wraps an existing gorm handle
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the schema
func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range []interface{}{&model.Client{}, &model.Invoice{}, &model.LineItem{}} {
		if err := s.db.WithContext(ctx).AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithinTx runs fn in one database transaction. On postgres, counting
// invoices inside it also takes a per-year advisory lock held until commit.
// On sqlite the transaction holds the database write lock from its start.
func (s *Store) WithinTx(ctx context.Context, fn func(tx billing.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, logger: s.logger, inTx: true})
	})
}

// sqliteDSN appends the connection parameters dsn does not already set
func sqliteDSN(dsn string) string {
	var missing []string
	for _, p := range sqliteParams {
		key := p[:strings.IndexByte(p, '=')+1]
		if !strings.Contains(dsn, key) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}

func (s *Store) isPostgres() bool {
	return s.db.Dialector.Name() == DriverPostgres
}

func (s *Store) lockNumbering(ctx context.Context, year int) error {
	if !s.inTx || !s.isPostgres() {
		return nil
	}
	if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?, ?)", numberingLockClass, year).Error; err != nil {
		return fmt.Errorf("lock numbering for %d: %w", year, err)
	}
	return nil
}

func notFound(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewNotFoundError(resource, id)
	}
	return err
}

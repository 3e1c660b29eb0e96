// store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"tansa-registration/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// RecordStore is everything the referral core needs from persistence.
// GormStore is the production implementation; tests may substitute fakes.
type RecordStore interface {
	FindByID(ctx context.Context, id uint) (*models.Registration, error)
	FindByReferralCode(ctx context.Context, code string) (*models.Registration, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Registration, error)
	FindByEmail(ctx context.Context, email string) (*models.Registration, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, reg *models.Registration) error
	IncrementReferralPoints(ctx context.Context, id uint, delta int64) error

	CountWithPointsAbove(ctx context.Context, points int64) (int64, error)
	TopByPoints(ctx context.Context, limit int) ([]models.Registration, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int64, error)
	SearchCompleted(ctx context.Context, term string, limit int) ([]models.Registration, error)
	ListRegistrations(ctx context.Context) ([]models.Registration, error)

	FindExecByID(ctx context.Context, id uint) (*models.Exec, error)
	ListExecs(ctx context.Context, limit int) ([]models.Exec, error)
	SignupCountsByExec(ctx context.Context) (map[uint]int64, error)

	// Transaction runs fn against a store bound to a single transaction.
	Transaction(ctx context.Context, fn func(tx RecordStore) error) error
}

// Open connects to Postgres. Unique-index violations are translated to
// gorm.ErrDuplicatedKey so callers can tell them apart from outages.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Config is the gorm configuration shared by every dialect.
func Config() *gorm.Config {
	return configWithLogger(log.New(os.Stdout, "\r\n", log.LstdFlags))
}

// Lookups miss all the time (webhook pre-checks, referral code polls), so
// only slow queries and real failures are logged.
func configWithLogger(w logger.Writer) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: logger.New(w, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Exec{},
		&models.Registration{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	default:
		return err
	}
}

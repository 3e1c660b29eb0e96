// store/registrations.go
package store

import (
	"context"
	"strings"
	"time"

	"tansa-registration/models"

	"gorm.io/gorm"
)

// GormStore implements RecordStore on top of gorm.
type GormStore struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var _ RecordStore = (*GormStore)(nil)

func (s *GormStore) first(ctx context.Context, query string, arg any) (*models.Registration, error) {
	var reg models.Registration
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&reg).Error; err != nil {
		return nil, translate(err)
	}
	return &reg, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) FindByReferralCode(ctx context.Context, code string) (*models.Registration, error) {
	return s.first(ctx, "referral_code = ?", code)
}

func (s *GormStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.Registration, error) {
	return s.first(ctx, "stripe_payment_id = ?", paymentID)
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.Registration, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormStore) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Registration{}).
		Where("referral_code = ?", code).
		Count(&count).Error
	return count > 0, translate(err)
}

func (s *GormStore) Create(ctx context.Context, reg *models.Registration) error {
	return translate(s.DB.WithContext(ctx).Create(reg).Error)
}

// IncrementReferralPoints adds delta in a single UPDATE so concurrent awards
// to the same registration cannot lose increments.
func (s *GormStore) IncrementReferralPoints(ctx context.Context, id uint, delta int64) error {
	result := s.DB.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		UpdateColumn("referral_points", gorm.Expr("referral_points + ?", delta))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountWithPointsAbove(ctx context.Context, points int64) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Registration{}).
		Where("referral_points > ?", points).
		Count(&count).Error
	return count, translate(err)
}

// TopByPoints returns registrations with at least one point, best first.
// Ties keep insertion order.
func (s *GormStore) TopByPoints(ctx context.Context, limit int) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Where("referral_points > ?", 0).
		Order("referral_points DESC").
		Order("id ASC").
		Limit(limit).
		Find(&regs).Error
	return regs, translate(err)
}

// CountCompletedSince counts completed registrations created at or after
// since. A zero since counts all of them.
func (s *GormStore) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	q := s.DB.WithContext(ctx).
		Model(&models.Registration{}).
		Where("payment_status = ?", models.PaymentStatusCompleted)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	err := q.Count(&count).Error
	return count, translate(err)
}

func (s *GormStore) SearchCompleted(ctx context.Context, term string, limit int) ([]models.Registration, error) {
	searchTerm := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	var regs []models.Registration
	err := s.DB.WithContext(ctx).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&regs).Error
	return regs, translate(err)
}

func (s *GormStore) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.DB.WithContext(ctx).Order("id ASC").Find(&regs).Error
	return regs, translate(err)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx RecordStore) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

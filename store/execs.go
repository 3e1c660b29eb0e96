// store/execs.go
package store

import (
	"context"

	"tansa-registration/models"
)

func (s *GormStore) FindExecByID(ctx context.Context, id uint) (*models.Exec, error) {
	var exec models.Exec
	if err := s.DB.WithContext(ctx).First(&exec, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &exec, nil
}

func (s *GormStore) ListExecs(ctx context.Context, limit int) ([]models.Exec, error) {
	var execs []models.Exec
	err := s.DB.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Find(&execs).Error
	return execs, translate(err)
}

// CreateExec is used by seeding and tests; the CMS owns exec records otherwise.
func (s *GormStore) CreateExec(ctx context.Context, exec *models.Exec) error {
	return translate(s.DB.WithContext(ctx).Create(exec).Error)
}

// SignupCountsByExec counts completed registrations per signing exec.
func (s *GormStore) SignupCountsByExec(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		SignedUpByID uint
		Total        int64
	}
	err := s.DB.WithContext(ctx).
		Model(&models.Registration{}).
		Select("signed_up_by_id, COUNT(*) AS total").
		Where("payment_status = ? AND signed_up_by_id IS NOT NULL", models.PaymentStatusCompleted).
		Group("signed_up_by_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SignedUpByID] = row.Total
	}
	return counts, nil
}

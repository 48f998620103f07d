package calculos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pagamento-api/internal/domain/billing"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(ctx context.Context, c *Calculation) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("%w: save calculation user_id=%s: %w", billing.ErrPersistence, c.UserID, err)
	}
	return nil
}

// ListByUser returns the user's history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Calculation, error) {
	calcs := []Calculation{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&calcs).Error; err != nil {
		return nil, fmt.Errorf("%w: list calculations user_id=%s: %w", billing.ErrPersistence, userID, err)
	}
	return calcs, nil
}

func (r *Repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Calculation{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: delete calculations user_id=%s: %w", billing.ErrPersistence, userID, res.Error)
	}
	return res.RowsAffected, nil
}

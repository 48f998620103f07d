package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository is the gorm-backed record store. Every method is a single
// round trip on the shared pool.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) InsertPending(ctx context.Context, userID string, amount decimal.Decimal, preferenceID string) (*Payment, error) {
	p := &Payment{
		UserID:       userID,
		Amount:       amount,
		Status:       StatusPending,
		PreferenceID: preferenceID,
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("%w: insert payment preference_id=%s: %w", ErrPersistence, preferenceID, err)
	}
	return p, nil
}

// UpdateStatusForLatestByUser moves the user's most recent payment from
// expected to status. It reports false when that row does not exist or no
// longer holds expected.
func (r *Repository) UpdateStatusForLatestByUser(ctx context.Context, userID string, expected, status Status) (bool, error) {
	latest := r.db.Model(&Payment{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(1)

	res := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = (?)", latest).
		Where("status = ?", expected).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: update latest payment user_id=%s: %w", ErrPersistence, userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindByPreferenceID returns nil, nil when no row matches.
func (r *Repository) FindByPreferenceID(ctx context.Context, preferenceID string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).Where("preference_id = ?", preferenceID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find payment preference_id=%s: %w", ErrPersistence, preferenceID, err)
	}
	return &p, nil
}

// FindLatestByUser returns nil, nil when the user has no payments.
func (r *Repository) FindLatestByUser(ctx context.Context, userID string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find latest payment user_id=%s: %w", ErrPersistence, userID, err)
	}
	return &p, nil
}

func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]Payment, error) {
	var payments []Payment
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("%w: list payments: %w", ErrPersistence, err)
	}
	return payments, nil
}

type Stats struct {
	Total          int64            `json:"total"`
	ByStatus       map[Status]int64 `json:"byStatus"`
	ApprovedVolume decimal.Decimal  `json:"approvedVolume"`
	RecentVolume   decimal.Decimal  `json:"recentVolume"`
}

// Stats aggregates counts per status and the approved volume, overall and
// for payments created since the given time.
func (r *Repository) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	db := r.db.WithContext(ctx)

	var counts []struct {
		Status Status
		Count  int64
	}
	if err := db.Model(&Payment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("%w: count payments: %w", ErrPersistence, err)
	}

	stats := &Stats{ByStatus: map[Status]int64{}}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
		stats.Total += c.Count
	}

	var total, recent struct{ Volume decimal.Decimal }
	if err := db.Model(&Payment{}).
		Where("status = ?", StatusApproved).
		Select("COALESCE(SUM(valor), 0) AS volume").
		Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: sum approved payments: %w", ErrPersistence, err)
	}
	if err := db.Model(&Payment{}).
		Where("status = ? AND created_at >= ?", StatusApproved, since).
		Select("COALESCE(SUM(valor), 0) AS volume").
		Scan(&recent).Error; err != nil {
		return nil, fmt.Errorf("%w: sum recent payments: %w", ErrPersistence, err)
	}
	stats.ApprovedVolume = total.Volume
	stats.RecentVolume = recent.Volume
	return stats, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/freelance-ledger/internal/model"
)

// AnalyticsRepository runs the read-only aggregate queries over paid
// jobs. Aggregation happens in SQL; ordering is part of the contract
// (totals descending, ties by role / profile id ascending).
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// EarningsByRole sums paid job prices grouped by the role of the
// contract owner.
func (r *AnalyticsRepository) EarningsByRole(ctx context.Context) ([]model.RoleEarnings, error) {
	var rows []model.RoleEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.role AS role, SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.owner_profile_id
		WHERE j.paid_amount > 0
		GROUP BY p.role
		ORDER BY total DESC, role ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopClients ranks client profiles by the total price of their paid
// jobs, best first.
func (r *AnalyticsRepository) TopClients(ctx context.Context, limit int) ([]model.ClientEarnings, error) {
	var rows []model.ClientEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS profile_id, p.name AS name, SUM(j.price) AS total_paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.owner_profile_id
		WHERE j.paid_amount > 0 AND p.role = 'client'
		GROUP BY p.id, p.name
		ORDER BY total_paid DESC, p.id ASC
		LIMIT ?
	`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/freelance-ledger/internal/config"
	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/repository"
)

// DepositService applies balance top-ups for clients. A deposit is
// capped at a fixed ratio of the client's outstanding unpaid job
// value, so nobody can park unbounded funds in the ledger.
type DepositService struct {
	repo     *repository.LedgerRepository
	capRatio float64
}

func NewDepositService(repo *repository.LedgerRepository, cfg *config.Config) *DepositService {
	return &DepositService{repo: repo, capRatio: cfg.Ledger.DepositCapRatio}
}

type DepositInput struct {
	ProfileID int64
	Amount    float64
	Principal model.Principal
}

type DepositResult struct {
	NewBalance float64
}

// Deposit credits the client's balance after checking the cap. The cap
// counts unpaid jobs under every contract the client owns, terminated
// ones included.
func (s *DepositService) Deposit(ctx context.Context, input DepositInput) (*DepositResult, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if input.ProfileID != input.Principal.ProfileID {
		return nil, ErrPermissionDenied
	}

	var result *DepositResult
	err := s.repo.Transaction(ctx, func(tx *repository.LedgerRepository) error {
		client, err := tx.GetClientProfile(ctx, input.ProfileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: client profile", ErrNotFound)
			}
			return err
		}

		outstanding, err := tx.SumUnpaidByOwner(ctx, client.ID)
		if err != nil {
			return err
		}
		cap := outstanding * s.capRatio
		if input.Amount > cap {
			return fmt.Errorf("%w: cannot deposit more than %.2f", ErrDepositExceedsCap, cap)
		}

		if err := tx.CreditBalance(ctx, client.ID, input.Amount); err != nil {
			return err
		}
		balance, err := tx.GetBalance(ctx, client.ID)
		if err != nil {
			return err
		}
		result = &DepositResult{NewBalance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

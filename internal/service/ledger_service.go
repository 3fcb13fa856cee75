package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/repository"
)

// LedgerService covers profile, contract and job creation plus the
// read-only listings. No money moves here.
type LedgerService struct {
	repo *repository.LedgerRepository
}

func NewLedgerService(repo *repository.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

type CreateProfileInput struct {
	Name string
	Role string
}

func (s *LedgerService) CreateProfile(ctx context.Context, input CreateProfileInput) (int64, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	role, ok := model.ParseProfileRole(strings.TrimSpace(input.Role))
	if !ok {
		return 0, fmt.Errorf("%w: role must be client or contractor", ErrInvalidInput)
	}
	return s.repo.CreateProfile(ctx, name, role)
}

func (s *LedgerService) CreateContract(ctx context.Context, ownerProfileID int64) (int64, error) {
	if ownerProfileID <= 0 {
		return 0, fmt.Errorf("%w: owner_profile_id is required", ErrInvalidInput)
	}
	if _, err := s.repo.GetProfile(ctx, ownerProfileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: owner profile", ErrNotFound)
		}
		return 0, err
	}
	return s.repo.CreateContract(ctx, ownerProfileID)
}

type AddJobInput struct {
	ContractID  int64
	Description string
	Price       float64
}

func (s *LedgerService) AddJob(ctx context.Context, input AddJobInput) (int64, error) {
	if strings.TrimSpace(input.Description) == "" {
		return 0, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if input.Price <= 0 {
		return 0, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if _, err := s.repo.GetContract(ctx, input.ContractID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: contract", ErrNotFound)
		}
		return 0, err
	}
	return s.repo.CreateJob(ctx, input.ContractID, strings.TrimSpace(input.Description), input.Price)
}

func (s *LedgerService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	return s.repo.ListProfiles(ctx)
}

func (s *LedgerService) ListContracts(ctx context.Context, profileID int64) ([]model.Contract, error) {
	return s.repo.ListContractsByOwner(ctx, profileID)
}

// GetContract returns a contract with its jobs, but only to the owning
// profile.
func (s *LedgerService) GetContract(ctx context.Context, contractID int64, principal model.Principal) (*model.Contract, error) {
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract", ErrNotFound)
		}
		return nil, err
	}
	if contract.OwnerProfileID != principal.ProfileID {
		return nil, ErrPermissionDenied
	}
	jobs, err := s.repo.ListJobsByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	contract.Jobs = jobs
	return contract, nil
}

// ListActiveContracts returns the caller's non-terminated contracts
// with their jobs attached.
func (s *LedgerService) ListActiveContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	contracts, err := s.repo.ListActiveContractsByOwner(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		jobs, err := s.repo.ListJobsByContract(ctx, contracts[i].ID)
		if err != nil {
			return nil, err
		}
		contracts[i].Jobs = jobs
	}
	return contracts, nil
}

// ListUnpaidJobs returns the caller's unpaid jobs in active contracts.
func (s *LedgerService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	if _, err := s.repo.GetProfile(ctx, principal.ProfileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile", ErrNotFound)
		}
		return nil, err
	}
	return s.repo.ListUnpaidJobsByOwner(ctx, principal.ProfileID)
}

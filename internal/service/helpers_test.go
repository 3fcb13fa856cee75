package service

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/nurpe/freelance-ledger/internal/config"
	"github.com/nurpe/freelance-ledger/internal/excel"
	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/pdf"
	"github.com/nurpe/freelance-ledger/internal/repository"
	"github.com/nurpe/freelance-ledger/internal/repository/testutil"
)

type testEnv struct {
	db        *gorm.DB
	repo      *repository.LedgerRepository
	ledger    *LedgerService
	payments  *PaymentService
	deposits  *DepositService
	analytics *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.DB(t)
	repo := repository.NewLedgerRepository(database)
	cfg := &config.Config{
		Ledger: config.LedgerConfig{
			DepositCapRatio:  0.25,
			BestClientsLimit: 2,
		},
	}
	return &testEnv{
		db:        database,
		repo:      repo,
		ledger:    NewLedgerService(repo),
		payments:  NewPaymentService(repo, pdf.NewGenerator()),
		deposits:  NewDepositService(repo, cfg),
		analytics: NewAnalyticsService(repository.NewAnalyticsRepository(database), excel.NewGenerator(), cfg),
	}
}

func (e *testEnv) createProfile(t *testing.T, name string, role model.ProfileRole, balance float64) int64 {
	t.Helper()
	id, err := e.repo.CreateProfile(context.Background(), name, role)
	if err != nil {
		t.Fatalf("create profile %s: %v", name, err)
	}
	if balance != 0 {
		if err := e.db.Exec(`UPDATE profiles SET balance = ? WHERE id = ?`, balance, id).Error; err != nil {
			t.Fatalf("fund profile %s: %v", name, err)
		}
	}
	return id
}

func (e *testEnv) createContract(t *testing.T, owner int64) int64 {
	t.Helper()
	id, err := e.repo.CreateContract(context.Background(), owner)
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return id
}

func (e *testEnv) createJob(t *testing.T, contract int64, description string, price float64) int64 {
	t.Helper()
	id, err := e.repo.CreateJob(context.Background(), contract, description, price)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return id
}

func (e *testEnv) balance(t *testing.T, profileID int64) float64 {
	t.Helper()
	balance, err := e.repo.GetBalance(context.Background(), profileID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	return balance
}

func clientPrincipal(id int64) model.Principal {
	return model.Principal{ProfileID: id, Role: model.RoleClient}
}

package repository

import (
	"context"
	"testing"

	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/repository/testutil"
)

// seedPaidJobs builds two clients with paid work: alice paid 700,
// bob paid 300, plus an unpaid job that must never show up.
func seedPaidJobs(t *testing.T, repo *LedgerRepository) (alice, bob int64) {
	t.Helper()
	ctx := context.Background()

	alice, _ = repo.CreateProfile(ctx, "alice", model.RoleClient)
	bob, _ = repo.CreateProfile(ctx, "bob", model.RoleClient)

	aliceContract, _ := repo.CreateContract(ctx, alice)
	bobContract, _ := repo.CreateContract(ctx, bob)

	for _, job := range []struct {
		contract int64
		price    float64
		paid     bool
	}{
		{aliceContract, 200, true},
		{aliceContract, 500, true},
		{bobContract, 300, true},
		{bobContract, 900, false},
	} {
		id, err := repo.CreateJob(ctx, job.contract, "work", job.price)
		if err != nil {
			t.Fatalf("create job: %v", err)
		}
		if job.paid {
			if ok, err := repo.MarkJobPaid(ctx, id); err != nil || !ok {
				t.Fatalf("mark paid: ok=%v err=%v", ok, err)
			}
		}
	}
	return alice, bob
}

func TestEarningsByRole(t *testing.T) {
	database := testutil.DB(t)
	ledger := NewLedgerRepository(database)
	analytics := NewAnalyticsRepository(database)
	seedPaidJobs(t, ledger)

	rows, err := analytics.EarningsByRole(context.Background())
	if err != nil {
		t.Fatalf("earnings by role: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Role != model.RoleClient {
		t.Errorf("role = %s, want client (contract owners)", rows[0].Role)
	}
	if rows[0].Total != 1000 {
		t.Errorf("total = %v, want 1000 (unpaid jobs excluded)", rows[0].Total)
	}
}

func TestEarningsByRoleEmptyLedger(t *testing.T) {
	analytics := NewAnalyticsRepository(testutil.DB(t))
	rows, err := analytics.EarningsByRole(context.Background())
	if err != nil {
		t.Fatalf("earnings by role: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows from empty ledger, want 0", len(rows))
	}
}

func TestTopClients(t *testing.T) {
	database := testutil.DB(t)
	ledger := NewLedgerRepository(database)
	analytics := NewAnalyticsRepository(database)
	alice, bob := seedPaidJobs(t, ledger)

	rows, err := analytics.TopClients(context.Background(), 2)
	if err != nil {
		t.Fatalf("top clients: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ProfileID != alice || rows[0].TotalPaid != 700 {
		t.Errorf("first = %+v, want alice with 700", rows[0])
	}
	if rows[1].ProfileID != bob || rows[1].TotalPaid != 300 {
		t.Errorf("second = %+v, want bob with 300", rows[1])
	}

	limited, err := analytics.TopClients(context.Background(), 1)
	if err != nil {
		t.Fatalf("top clients limit 1: %v", err)
	}
	if len(limited) != 1 || limited[0].ProfileID != alice {
		t.Errorf("limit 1 = %+v, want only alice", limited)
	}
}

func TestTopClientsTieBreaksByID(t *testing.T) {
	database := testutil.DB(t)
	ledger := NewLedgerRepository(database)
	analytics := NewAnalyticsRepository(database)
	ctx := context.Background()

	first, _ := ledger.CreateProfile(ctx, "first", model.RoleClient)
	second, _ := ledger.CreateProfile(ctx, "second", model.RoleClient)
	for _, owner := range []int64{first, second} {
		contract, _ := ledger.CreateContract(ctx, owner)
		job, _ := ledger.CreateJob(ctx, contract, "work", 400)
		if ok, err := ledger.MarkJobPaid(ctx, job); err != nil || !ok {
			t.Fatalf("mark paid: ok=%v err=%v", ok, err)
		}
	}

	rows, err := analytics.TopClients(ctx, 2)
	if err != nil {
		t.Fatalf("top clients: %v", err)
	}
	if len(rows) != 2 || rows[0].ProfileID != first || rows[1].ProfileID != second {
		t.Errorf("tie order = %+v, want ascending profile id", rows)
	}
}

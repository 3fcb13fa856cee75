package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/freelance-ledger/internal/model"
)

// LedgerRepository is the data access layer for profiles, contracts,
// jobs and payment records. It holds no business rules; the guarded
// update methods exist so the services can make their read-validate-
// mutate sequences safe under concurrency.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Returning an error rolls back; otherwise the
// transaction commits. This is the atomicity boundary for payments
// and deposits.
func (r *LedgerRepository) Transaction(ctx context.Context, fn func(tx *LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepository{db: tx})
	})
}

func (r *LedgerRepository) CreateProfile(ctx context.Context, name string, role model.ProfileRole) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO profiles (name, role, balance, created_at)
		VALUES (?, ?, 0, CURRENT_TIMESTAMP)
		RETURNING id
	`, name, string(role)).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *LedgerRepository) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, role, balance, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func (r *LedgerRepository) GetClientProfile(ctx context.Context, id int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, role, balance, created_at
		FROM profiles
		WHERE id = ? AND role = 'client'
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func (r *LedgerRepository) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, role, balance, created_at
		FROM profiles
		ORDER BY id ASC
	`).Scan(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// FirstContractorExcept returns the lowest-id contractor profile whose
// id differs from the given one. The contract schema carries no
// assigned contractor, so payment routing falls back to this
// deterministic pick.
func (r *LedgerRepository) FirstContractorExcept(ctx context.Context, profileID int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, role, balance, created_at
		FROM profiles
		WHERE role = 'contractor' AND id <> ?
		ORDER BY id ASC
		LIMIT 1
	`, profileID).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func (r *LedgerRepository) CreateContract(ctx context.Context, ownerProfileID int64) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contracts (owner_profile_id, status, created_at)
		VALUES (?, 'new', CURRENT_TIMESTAMP)
		RETURNING id
	`, ownerProfileID).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *LedgerRepository) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, owner_profile_id, status, created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *LedgerRepository) ListContractsByOwner(ctx context.Context, ownerProfileID int64) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, owner_profile_id, status, created_at
		FROM contracts
		WHERE owner_profile_id = ?
		ORDER BY id ASC
	`, ownerProfileID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *LedgerRepository) ListActiveContractsByOwner(ctx context.Context, ownerProfileID int64) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, owner_profile_id, status, created_at
		FROM contracts
		WHERE owner_profile_id = ? AND status <> 'terminated'
		ORDER BY id ASC
	`, ownerProfileID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *LedgerRepository) CreateJob(ctx context.Context, contractID int64, description string, price float64) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO jobs (contract_id, description, price, paid_amount, created_at)
		VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
		RETURNING id
	`, contractID, description, price).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *LedgerRepository) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, description, price, paid_amount, created_at
		FROM jobs
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (r *LedgerRepository) ListJobsByContract(ctx context.Context, contractID int64) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, description, price, paid_amount, created_at
		FROM jobs
		WHERE contract_id = ?
		ORDER BY id ASC
	`, contractID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListUnpaidJobsByOwner returns the unpaid jobs sitting in the owner's
// non-terminated contracts.
func (r *LedgerRepository) ListUnpaidJobsByOwner(ctx context.Context, ownerProfileID int64) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.paid_amount, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.owner_profile_id = ?
			AND c.status <> 'terminated'
			AND j.paid_amount = 0
		ORDER BY j.id ASC
	`, ownerProfileID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// SumUnpaidByOwner totals the outstanding job value for a client.
// Contract status is deliberately ignored here; the deposit cap counts
// every unpaid job the client owns.
func (r *LedgerRepository) SumUnpaidByOwner(ctx context.Context, ownerProfileID int64) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(j.price), 0)
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.owner_profile_id = ? AND j.paid_amount = 0
	`, ownerProfileID).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// MarkJobPaid flips a job to paid only if it is still unpaid. The
// false return means another payment got there first.
func (r *LedgerRepository) MarkJobPaid(ctx context.Context, jobID int64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE jobs
		SET paid_amount = price
		WHERE id = ? AND paid_amount = 0
	`, jobID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DebitBalance subtracts amount from a profile balance only if the
// balance covers it, so the non-negative invariant holds even when
// two debits race.
func (r *LedgerRepository) DebitBalance(ctx context.Context, profileID int64, amount float64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = balance - ?
		WHERE id = ? AND balance >= ?
	`, amount, profileID, amount)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *LedgerRepository) CreditBalance(ctx context.Context, profileID int64, amount float64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = balance + ?
		WHERE id = ?
	`, amount, profileID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, profileID int64) (float64, error) {
	var balance float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT balance FROM profiles WHERE id = ?
	`, profileID).Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *LedgerRepository) RecordPayment(ctx context.Context, payment model.Payment) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO payments (id, job_id, payer_profile_id, payee_profile_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, payment.ID, payment.JobID, payment.PayerProfileID, payment.PayeeProfileID, payment.Amount, payment.CreatedAt).Error
}

func (r *LedgerRepository) GetPaymentByJob(ctx context.Context, jobID int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, job_id, payer_profile_id, payee_profile_id, amount, created_at
		FROM payments
		WHERE job_id = ?
		LIMIT 1
	`, jobID).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.JobID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &payment, nil
}

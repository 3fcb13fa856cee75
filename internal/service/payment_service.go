package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/repository"
)

type ReceiptGenerator interface {
	Generate(receipt model.Receipt) ([]byte, error)
}

// PaymentService executes job payments: a single transaction that
// marks the job paid, debits the contract owner and credits a
// contractor. Validation failures abort before any mutation.
type PaymentService struct {
	repo *repository.LedgerRepository
	pdf  ReceiptGenerator
}

func NewPaymentService(repo *repository.LedgerRepository, pdf ReceiptGenerator) *PaymentService {
	return &PaymentService{repo: repo, pdf: pdf}
}

type PayJobInput struct {
	JobID     int64
	Principal model.Principal
}

type PayJobResult struct {
	JobID        int64
	Amount       float64
	PayerBalance float64
	ContractorID int64
}

// PayJob moves the job price from the contract owner to a contractor.
// The conditional updates on jobs.paid_amount and profiles.balance
// guarantee that concurrent attempts on the same job or the same
// balance cannot both commit.
//
// The schema does not bind a contract to a contractor, so the payee is
// the lowest-id contractor profile other than the payer. Fixing that
// needs a schema change, not a different pick here.
func (s *PaymentService) PayJob(ctx context.Context, input PayJobInput) (*PayJobResult, error) {
	if input.JobID <= 0 {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}

	var result *PayJobResult
	err := s.repo.Transaction(ctx, func(tx *repository.LedgerRepository) error {
		job, err := tx.GetJob(ctx, input.JobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job", ErrNotFound)
			}
			return err
		}
		contract, err := tx.GetContract(ctx, job.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract", ErrNotFound)
			}
			return err
		}
		if contract.OwnerProfileID != input.Principal.ProfileID {
			return ErrPermissionDenied
		}
		if job.Paid() {
			return ErrAlreadyPaid
		}

		payer, err := tx.GetProfile(ctx, contract.OwnerProfileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payer profile", ErrNotFound)
			}
			return err
		}
		if payer.Balance < job.Price {
			return ErrInsufficientFunds
		}

		contractor, err := tx.FirstContractorExcept(ctx, payer.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoContractorAvailable
			}
			return err
		}

		paid, err := tx.MarkJobPaid(ctx, job.ID)
		if err != nil {
			return err
		}
		if !paid {
			return ErrAlreadyPaid
		}
		debited, err := tx.DebitBalance(ctx, payer.ID, job.Price)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientFunds
		}
		if err := tx.CreditBalance(ctx, contractor.ID, job.Price); err != nil {
			return err
		}
		if err := tx.RecordPayment(ctx, model.Payment{
			ID:             uuid.New(),
			JobID:          job.ID,
			PayerProfileID: payer.ID,
			PayeeProfileID: contractor.ID,
			Amount:         job.Price,
			CreatedAt:      time.Now().UTC(),
		}); err != nil {
			return err
		}

		balance, err := tx.GetBalance(ctx, payer.ID)
		if err != nil {
			return err
		}
		result = &PayJobResult{
			JobID:        job.ID,
			Amount:       job.Price,
			PayerBalance: balance,
			ContractorID: contractor.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

// JobReceipt renders the payment receipt for a paid job. Only the
// contract owner can download it.
func (s *PaymentService) JobReceipt(ctx context.Context, jobID int64, principal model.Principal) (*ReceiptResult, error) {
	if jobID <= 0 {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job", ErrNotFound)
		}
		return nil, err
	}
	contract, err := s.repo.GetContract(ctx, job.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract", ErrNotFound)
		}
		return nil, err
	}
	if contract.OwnerProfileID != principal.ProfileID {
		return nil, ErrPermissionDenied
	}
	payment, err := s.repo.GetPaymentByJob(ctx, job.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no payment recorded for this job", ErrNotFound)
		}
		return nil, err
	}
	payer, err := s.repo.GetProfile(ctx, payment.PayerProfileID)
	if err != nil {
		return nil, err
	}
	contractor, err := s.repo.GetProfile(ctx, payment.PayeeProfileID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.Receipt{
		Payment:    *payment,
		Job:        *job,
		Contract:   *contract,
		Payer:      *payer,
		Contractor: *contractor,
	})
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: buildReceiptFileName(*job, *payment),
		Content:  content,
	}, nil
}

func buildReceiptFileName(job model.Job, payment model.Payment) string {
	label := sanitizeFileName(strings.ToLower(job.Description))
	if label == "" {
		label = fmt.Sprintf("job-%d", job.ID)
	}
	return fmt.Sprintf("receipt-%s-%s.pdf", label, payment.CreatedAt.Format("20060102"))
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

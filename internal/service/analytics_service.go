package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/freelance-ledger/internal/config"
	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/repository"
)

type ExcelGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

// AnalyticsService serves the admin earnings queries. Both queries
// accept a period for API compatibility, but job earnings carry no
// timestamp, so the period never narrows the aggregates; it is only
// echoed into the exported report.
type AnalyticsService struct {
	repo         *repository.AnalyticsRepository
	excel        ExcelGenerator
	defaultLimit int
}

func NewAnalyticsService(repo *repository.AnalyticsRepository, excel ExcelGenerator, cfg *config.Config) *AnalyticsService {
	return &AnalyticsService{
		repo:         repo,
		excel:        excel,
		defaultLimit: cfg.Ledger.BestClientsLimit,
	}
}

type PeriodInput struct {
	Start time.Time
	End   time.Time
	Limit int
}

func (s *AnalyticsService) validatePeriod(input PeriodInput) error {
	if input.Start.IsZero() || input.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if input.Start.After(input.End) {
		return fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return nil
}

// BestProfession returns the role whose contracts earned the most
// across paid jobs. Ties resolve to the first role in ascending order.
func (s *AnalyticsService) BestProfession(ctx context.Context, input PeriodInput) (*model.RoleEarnings, error) {
	if err := s.validatePeriod(input); err != nil {
		return nil, err
	}
	rows, err := s.repo.EarningsByRole(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no paid jobs in the ledger", ErrNoData)
	}
	best := rows[0]
	return &best, nil
}

// BestClients ranks clients by total paid job value, descending, ties
// by ascending profile id. A missing limit falls back to the
// configured default.
func (s *AnalyticsService) BestClients(ctx context.Context, input PeriodInput) ([]model.ClientEarnings, error) {
	if err := s.validatePeriod(input); err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	rows, err := s.repo.TopClients(ctx, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.ClientEarnings{}
	}
	return rows, nil
}

type ReportResult struct {
	FileName string
	Content  []byte
}

// EarningsReport builds the admin workbook with the per-role earnings
// summary and the top-clients ranking.
func (s *AnalyticsService) EarningsReport(ctx context.Context, input PeriodInput) (*ReportResult, error) {
	if err := s.validatePeriod(input); err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	byRole, err := s.repo.EarningsByRole(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.TopClients(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := model.EarningsReport{
		PeriodStart: input.Start,
		PeriodEnd:   input.End,
		ByRole:      byRole,
		TopClients:  clients,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("earnings-%s-%s.xlsx",
		report.PeriodStart.Format("20060102"),
		report.PeriodEnd.Format("20060102"),
	)
	return &ReportResult{FileName: fileName, Content: content}, nil
}

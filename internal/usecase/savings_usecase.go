package usecase

import (
	"context"
	"fmt"
	"time"

	"GridCast/internal/domain/models"
	domsvc "GridCast/internal/domain/service"
)

// SavingsUseCase provides business logic for cost-attribution reports.
type SavingsUseCase struct {
	calc domsvc.SavingsCalculator
}

func NewSavingsUseCase(calc domsvc.SavingsCalculator) *SavingsUseCase {
	return &SavingsUseCase{calc: calc}
}

type SavingsParams struct {
	SiteID string
	Market string
	Start  time.Time
	End    time.Time
}

func (uc *SavingsUseCase) CalculateSavings(ctx context.Context, p SavingsParams) (*models.SavingsAnalysis, error) {
	if p.SiteID == "" {
		return nil, fmt.Errorf("site_id required")
	}
	if p.Market == "" {
		return nil, fmt.Errorf("market required")
	}
	if p.Start.After(p.End) {
		return nil, fmt.Errorf("start must be <= end")
	}
	return uc.calc.CalculateSavings(ctx, p.SiteID, p.Start, p.End, p.Market)
}

func (uc *SavingsUseCase) CalculateForecastAccuracy(ctx context.Context, market string, start, end time.Time) (*models.AccuracyReport, error) {
	if market == "" {
		return nil, fmt.Errorf("market required")
	}
	if start.After(end) {
		return nil, fmt.Errorf("start must be <= end")
	}
	return uc.calc.CalculateForecastAccuracy(ctx, start, end, market)
}

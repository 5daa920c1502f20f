package analytics

import (
	"errors"
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/modules/cash_flows"
	"github.com/aristath/dealflow/pkg/tvm"
)

// ErrNoSeries is returned when a deal has no stored cash flow series.
var ErrNoSeries = errors.New("deal has no cash flow series")

const defaultSmoothingWindow = 3

// PositionPoint is one point in a deal's cumulative cash position.
type PositionPoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// PositionChart is the cumulative cash position with smoothed overlays for
// charting. SMA and EMA are aligned with Points; leading entries shorter
// than the window are zero, as the smoothing library leaves them.
type PositionChart struct {
	Points []PositionPoint `json:"points"`
	SMA    []float64       `json:"sma"`
	EMA    []float64       `json:"ema"`
	Window int             `json:"window"`
}

// DSCRPeriod is one period's operating income and debt service.
type DSCRPeriod struct {
	NOI         float64 `json:"noi"`
	DebtService float64 `json:"debt_service"`
}

// DSCRPoint is the coverage ratio for one period. Ratio is nil when the
// ratio is undefined for the period.
type DSCRPoint struct {
	Period int      `json:"period"`
	Ratio  *float64 `json:"ratio"`
}

// Service computes chart series and coverage analytics over stored deal
// cash flows.
type Service struct {
	flows *cash_flows.Repository
	log   zerolog.Logger
}

// NewService creates a new analytics service.
func NewService(flows *cash_flows.Repository, log zerolog.Logger) *Service {
	return &Service{
		flows: flows,
		log:   log.With().Str("service", "analytics").Logger(),
	}
}

// CashPositionHistory returns the running cumulative cash position of a
// deal, one point per monthly period.
func (s *Service) CashPositionHistory(dealID string) ([]PositionPoint, error) {
	series, err := s.flows.GetSeries(dealID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSeries, dealID)
	}

	points := make([]PositionPoint, series.Len())
	balance := 0.0
	for period, amount := range series.Amounts {
		balance += amount
		points[period] = PositionPoint{
			Date:    series.Date(period).Format("2006-01-02"),
			Balance: balance,
		}
	}
	return points, nil
}

// CashPositionChart returns the cumulative position with SMA and EMA
// overlays. A window below 2 or above the series length falls back to the
// default (clamped to the series length).
func (s *Service) CashPositionChart(dealID string, window int) (*PositionChart, error) {
	points, err := s.CashPositionHistory(dealID)
	if err != nil {
		return nil, err
	}

	if window < 2 || window > len(points) {
		window = defaultSmoothingWindow
	}
	if window > len(points) {
		window = len(points)
	}

	chart := &PositionChart{Points: points, Window: window}
	if window >= 2 {
		balances := make([]float64, len(points))
		for i, p := range points {
			balances[i] = p.Balance
		}
		chart.SMA = talib.Sma(balances, window)
		chart.EMA = talib.Ema(balances, window)
	}
	return chart, nil
}

// DebtServiceCoverage computes the per-period coverage ratio for a posted
// NOI / debt service schedule.
func DebtServiceCoverage(periods []DSCRPeriod) []DSCRPoint {
	points := make([]DSCRPoint, len(periods))
	for i, p := range periods {
		points[i] = DSCRPoint{
			Period: i,
			Ratio:  tvm.DSCR(p.NOI, p.DebtService),
		}
	}
	return points
}

package cash_flows

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository handles cash flow series persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new cash flow repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cash_flows").Logger(),
	}
}

// ReplaceSeries atomically replaces a deal's entire cash flow series. The
// series is stored as one row per monthly period so partial updates can never
// leave a gap in the middle of a deal's timeline.
func (r *Repository) ReplaceSeries(dealID string, series domain.CashFlowSeries) error {
	if err := series.Validate(); err != nil {
		return fmt.Errorf("invalid cash flow series: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM deal_cash_flows WHERE deal_id = ?", dealID); err != nil {
		return fmt.Errorf("failed to clear existing series: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO deal_cash_flows (deal_id, period, date, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	for period, amount := range series.Amounts {
		date := series.Date(period).Format(dateLayout)
		if _, err := stmt.Exec(dealID, period, date, amount, createdAt); err != nil {
			return fmt.Errorf("failed to insert period %d: %w", period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit series: %w", err)
	}

	r.log.Info().
		Str("deal_id", dealID).
		Int("periods", series.Len()).
		Msg("Cash flow series replaced")

	return nil
}

// GetSeries reconstructs a deal's cash flow series from its stored rows.
// Returns nil with no error when the deal has no flows yet.
func (r *Repository) GetSeries(dealID string) (*domain.CashFlowSeries, error) {
	rows, err := r.db.Query(`
		SELECT period, date, amount
		FROM deal_cash_flows
		WHERE deal_id = ?
		ORDER BY period ASC
	`, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var (
		amounts   []float64
		startDate time.Time
	)
	for rows.Next() {
		var (
			period  int
			dateStr string
			amount  float64
		)
		if err := rows.Scan(&period, &dateStr, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		if period != len(amounts) {
			return nil, fmt.Errorf("series for deal %s has a gap at period %d", dealID, len(amounts))
		}
		if period == 0 {
			startDate, err = time.Parse(dateLayout, dateStr)
			if err != nil {
				return nil, fmt.Errorf("invalid start date %q: %w", dateStr, err)
			}
		}
		amounts = append(amounts, amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series: %w", err)
	}

	if len(amounts) == 0 {
		return nil, nil
	}

	series := domain.NewCashFlowSeries(startDate, amounts)
	return &series, nil
}

// GetRows returns the raw stored rows for a deal, ordered by period.
func (r *Repository) GetRows(dealID string) ([]CashFlowRow, error) {
	rows, err := r.db.Query(`
		SELECT id, deal_id, period, date, amount, created_at
		FROM deal_cash_flows
		WHERE deal_id = ?
		ORDER BY period ASC
	`, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var result []CashFlowRow
	for rows.Next() {
		var (
			row       CashFlowRow
			createdAt string
		)
		if err := rows.Scan(&row.ID, &row.DealID, &row.Period, &row.Date, &row.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// DealIDs returns the IDs of every deal that has a stored series.
func (r *Repository) DealIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT deal_id FROM deal_cash_flows ORDER BY deal_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query deal IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan deal ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deal IDs: %w", err)
	}

	return ids, nil
}

// CountRows returns the total number of stored flow rows.
func (r *Repository) CountRows() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM deal_cash_flows").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

package deals

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timestampLayout = "2006-01-02 15:04:05"

// Repository handles deal persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new deal repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "deals").Logger(),
	}
}

// Create registers a new deal with a generated ID.
func (r *Repository) Create(name, structureTOML string) (*Deal, error) {
	now := time.Now().UTC()
	deal := &Deal{
		ID:        uuid.NewString(),
		Name:      name,
		Structure: structureTOML,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.Exec(`
		INSERT INTO deals (id, name, structure_toml, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, deal.ID, deal.Name, deal.Structure, now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert deal: %w", err)
	}

	r.log.Info().Str("deal_id", deal.ID).Str("name", name).Msg("Deal created")
	return deal, nil
}

// GetByID retrieves a deal by ID. Returns nil with no error when missing.
func (r *Repository) GetByID(id string) (*Deal, error) {
	return r.getOne("SELECT id, name, structure_toml, created_at, updated_at FROM deals WHERE id = ?", id)
}

// GetByName retrieves a deal by its unique name. Returns nil when missing.
func (r *Repository) GetByName(name string) (*Deal, error) {
	return r.getOne("SELECT id, name, structure_toml, created_at, updated_at FROM deals WHERE name = ?", name)
}

func (r *Repository) getOne(query string, arg interface{}) (*Deal, error) {
	var (
		deal      Deal
		createdAt string
		updatedAt string
	)
	err := r.db.QueryRow(query, arg).Scan(&deal.ID, &deal.Name, &deal.Structure, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	deal.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	deal.UpdatedAt, _ = time.Parse(timestampLayout, updatedAt)
	return &deal, nil
}

// List retrieves all deals ordered by creation time.
func (r *Repository) List() ([]Deal, error) {
	rows, err := r.db.Query("SELECT id, name, structure_toml, created_at, updated_at FROM deals ORDER BY created_at ASC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		var (
			deal      Deal
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&deal.ID, &deal.Name, &deal.Structure, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deal.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
		deal.UpdatedAt, _ = time.Parse(timestampLayout, updatedAt)
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	return deals, nil
}

// UpdateStructure replaces a deal's partnership definition.
func (r *Repository) UpdateStructure(id, structureTOML string) error {
	result, err := r.db.Exec(`
		UPDATE deals SET structure_toml = ?, updated_at = ? WHERE id = ?
	`, structureTOML, time.Now().UTC().Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("failed to update structure: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deal %s not found", id)
	}
	return nil
}

// Count returns the number of registered deals.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM deals").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return count, nil
}

// SaveDistribution upserts the latest allocation result for a deal.
func (r *Repository) SaveDistribution(rec DistributionRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO deal_distributions (deal_id, digest, result_json, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(deal_id) DO UPDATE SET
			digest = excluded.digest,
			result_json = excluded.result_json,
			computed_at = excluded.computed_at
	`, rec.DealID, rec.Digest, rec.ResultJSON, rec.ComputedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to save distribution: %w", err)
	}
	return nil
}

// GetDistribution retrieves the persisted allocation result for a deal.
// Returns nil with no error when none has been computed yet.
func (r *Repository) GetDistribution(dealID string) (*DistributionRecord, error) {
	var (
		rec        DistributionRecord
		computedAt string
	)
	err := r.db.QueryRow(`
		SELECT deal_id, digest, result_json, computed_at
		FROM deal_distributions
		WHERE deal_id = ?
	`, dealID).Scan(&rec.DealID, &rec.Digest, &rec.ResultJSON, &computedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}

	rec.ComputedAt, _ = time.Parse(timestampLayout, computedAt)
	return &rec, nil
}

// LastComputedAt returns the most recent distribution timestamp across all
// deals, or the zero time when nothing has been computed.
func (r *Repository) LastComputedAt() (time.Time, error) {
	var computedAt sql.NullString
	err := r.db.QueryRow("SELECT MAX(computed_at) FROM deal_distributions").Scan(&computedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last computation: %w", err)
	}
	if !computedAt.Valid || computedAt.String == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(timestampLayout, computedAt.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid computed_at %q: %w", computedAt.String, err)
	}
	return t, nil
}

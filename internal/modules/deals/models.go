package deals

import "time"

// Deal is a registered investment with its partnership structure stored as
// the original TOML definition.
type Deal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Structure string    `json:"structure"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DistributionRecord is the persisted result of the latest allocation run
// for a deal. Digest identifies the exact structure + series the result was
// computed from, so stale records are detectable.
type DistributionRecord struct {
	DealID     string    `json:"deal_id"`
	Digest     string    `json:"digest"`
	ResultJSON string    `json:"result"`
	ComputedAt time.Time `json:"computed_at"`
}

// CreateDealRequest is the JSON body for registering a deal.
type CreateDealRequest struct {
	Name      string `json:"name"`
	Structure string `json:"structure"` // TOML partnership definition
}

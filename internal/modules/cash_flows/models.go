package cash_flows

import "time"

// CashFlowRow is one stored monthly aggregate flow for a deal. Negative
// amounts are capital contributions, positive amounts are distributions.
type CashFlowRow struct {
	ID        int       `json:"id"`
	DealID    string    `json:"deal_id"`
	Period    int       `json:"period"`
	Date      string    `json:"date"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// SeriesRequest is the JSON body for replacing a deal's cash flow series.
type SeriesRequest struct {
	StartDate string    `json:"start_date"` // YYYY-MM-DD, period 0
	Amounts   []float64 `json:"amounts"`
}

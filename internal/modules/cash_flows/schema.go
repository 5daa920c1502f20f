package cash_flows

import "database/sql"

// CashFlowsSchema stores one row per deal per monthly period. The series is
// always written whole, so (deal_id, period) rows are contiguous from 0.
const CashFlowsSchema = `
CREATE TABLE IF NOT EXISTS deal_cash_flows (
    id INTEGER PRIMARY KEY,
    deal_id TEXT NOT NULL,
    period INTEGER NOT NULL,
    date TEXT NOT NULL,
    amount REAL NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE(deal_id, period)
);

CREATE INDEX IF NOT EXISTS idx_deal_cash_flows_deal ON deal_cash_flows(deal_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(CashFlowsSchema)
	return err
}

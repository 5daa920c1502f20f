package deals

import "database/sql"

const DealsSchema = `
CREATE TABLE IF NOT EXISTS deals (
    id TEXT PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    structure_toml TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deal_distributions (
    deal_id TEXT PRIMARY KEY,
    digest TEXT NOT NULL,
    result_json TEXT NOT NULL,
    computed_at TEXT NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(DealsSchema)
	return err
}

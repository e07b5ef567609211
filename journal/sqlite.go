package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Journal backed by a local sqlite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the journal database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(r Record) error {
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO submissions
		(time, symbol, action, order_type, state, reason, client_order_id, entry_order_id, hedge_order_id, entry, target, stop, qty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Time, r.Symbol, r.Action, r.OrderType, r.State, r.Reason,
		r.ClientOrderID, r.EntryOrderID, r.HedgeOrderID,
		r.Entry, r.Target, r.Stop, r.Qty,
	)
	return err
}

// Recent returns the latest n records, newest first.
func (j *SQLite) Recent(n int) ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, action, order_type, state, reason, client_order_id, entry_order_id, hedge_order_id, entry, target, stop, qty
		FROM submissions ORDER BY time DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// BySymbol returns all records for symbol, newest first.
func (j *SQLite) BySymbol(symbol string) ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, action, order_type, state, reason, client_order_id, entry_order_id, hedge_order_id, entry, target, stop, qty
		FROM submissions WHERE symbol = ? ORDER BY time DESC, id DESC`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.Time, &r.Symbol, &r.Action, &r.OrderType, &r.State, &r.Reason,
			&r.ClientOrderID, &r.EntryOrderID, &r.HedgeOrderID,
			&r.Entry, &r.Target, &r.Stop, &r.Qty,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

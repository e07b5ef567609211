// Package journal persists one record per submission decision: accepts,
// rejections and failures alike, so a run can be audited after the fact.
// The brokerage remains the system of record for orders and positions;
// the journal only records what this client decided and why.
package journal

import "time"

// Record is one submission decision.
type Record struct {
	Time          time.Time
	Symbol        string
	Action        string
	OrderType     string
	State         string
	Reason        string
	ClientOrderID string
	EntryOrderID  string
	HedgeOrderID  string
	Entry         float64
	Target        float64
	Stop          float64
	Qty           int64
}

// Journal records submission decisions.
type Journal interface {
	Record(Record) error
	Close() error
}

// Nop discards all records. Used in tests and when journaling is off.
type Nop struct{}

func (Nop) Record(Record) error { return nil }
func (Nop) Close() error        { return nil }

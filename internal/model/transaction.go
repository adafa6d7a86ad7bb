package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on every external interface.
const DateLayout = "2006-01-02"

// TransactionRecord is a single billing line submitted for scoring.
// Every field other than ModelType is optional and defaults to its zero value.
type TransactionRecord struct {
	Date          time.Time
	Amount        decimal.Decimal
	PatientID     string
	ProcedureCode string // CDT procedure code, e.g. D0120
	Notes         string // Free-text provider notes
	ModelType     ModelType
	HasAmount     bool
	HasDate       bool
}

// AmountFloat returns the amount as a float64 for the heuristic rules.
func (t TransactionRecord) AmountFloat() float64 {
	f, _ := t.Amount.Float64()
	return f
}

// DateString returns the calendar date, or an empty string when none was given.
func (t TransactionRecord) DateString() string {
	if !t.HasDate {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// AmountString returns the amount as submitted, or an empty string when none was given.
func (t TransactionRecord) AmountString() string {
	if !t.HasAmount {
		return ""
	}
	return t.Amount.String()
}

// Fingerprint creates a stable hash of the record for log correlation.
func (t TransactionRecord) Fingerprint() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.ModelType,
		t.PatientID,
		t.ProcedureCode,
		t.AmountString(),
		t.DateString())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8])
}

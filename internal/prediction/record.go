package prediction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/model"
)

// User-facing validation messages.
const (
	MsgModelTypeRequired = "Model type is required"
	MsgInvalidAmount     = "Amount must be a number"
	MsgNegativeAmount    = "Amount must not be negative"
	MsgInvalidDate       = "Date must be in YYYY-MM-DD format"
)

// RecordInput is a record as submitted by a client, before validation.
// Empty strings mean the field was not provided.
type RecordInput struct {
	ModelType     string
	PatientID     string
	ProcedureCode string
	Amount        string
	Date          string
	Notes         string
}

// NewRecord validates input and builds an immutable TransactionRecord.
// Unknown model types are accepted; the dispatcher routes them to the fallback.
func NewRecord(in RecordInput) (model.TransactionRecord, error) {
	modelType := strings.TrimSpace(in.ModelType)
	if modelType == "" {
		return model.TransactionRecord{}, common.ValidationError("model_type", MsgModelTypeRequired)
	}

	rec := model.TransactionRecord{
		ModelType:     model.ModelType(modelType),
		PatientID:     in.PatientID,
		ProcedureCode: in.ProcedureCode,
		Notes:         in.Notes,
	}

	if strings.TrimSpace(in.Amount) != "" {
		amount, err := ParseAmount(in.Amount)
		if err != nil {
			return model.TransactionRecord{}, err
		}
		rec.Amount = amount
		rec.HasAmount = true
	}

	if strings.TrimSpace(in.Date) != "" {
		date, err := ParseDate(in.Date)
		if err != nil {
			return model.TransactionRecord{}, err
		}
		rec.Date = date
		rec.HasDate = true
	}

	return rec, nil
}

// ParseAmount parses a non-negative decimal amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, common.ValidationError("amount", MsgInvalidAmount)
	}
	if err := CheckAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// CheckAmount rejects negative amounts.
func CheckAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return common.ValidationError("amount", MsgNegativeAmount)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	date, err := time.Parse(model.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, common.ValidationError("date", MsgInvalidDate)
	}
	return date, nil
}

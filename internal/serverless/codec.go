// Package serverless implements the function-as-a-service scoring entry point:
// a base64 JSON request codec and an API Gateway proxy handler.
package serverless

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/prediction"
)

// Request is the decoded request body. Nil fields were not provided.
type Request struct {
	ModelType   *string          `json:"model_type,omitempty"`
	PatientUUID *string          `json:"patient_uuid,omitempty"`
	CDTCode     *string          `json:"cdt_code,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// Encode renders req as base64 (standard alphabet) JSON.
func Encode(req Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a base64 JSON body. Transport problems wrap common.ErrDecode;
// a well-formed object with a mistyped field wraps common.ErrValidation.
func Decode(body string) (Request, error) {
	if body == "" {
		return Request{}, fmt.Errorf("%w: empty body", common.ErrDecode)
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return Request{}, fmt.Errorf("%w: body is not UTF-8", common.ErrDecode)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Request{}, fmt.Errorf("%w: %w", common.ErrDecode, err)
	}
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("%w: empty object", common.ErrDecode)
	}

	var req Request
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return req, nil
}

// Record validates req and builds a TransactionRecord.
// Unlike the web form, the model type must be one with a dedicated strategy.
func (r Request) Record() (model.TransactionRecord, error) {
	if r.ModelType == nil || !model.ModelType(*r.ModelType).IsKnown() {
		return model.TransactionRecord{}, fmt.Errorf("%w: missing or unknown model_type", common.ErrValidation)
	}

	in := prediction.RecordInput{
		ModelType:     *r.ModelType,
		PatientID:     deref(r.PatientUUID),
		ProcedureCode: deref(r.CDTCode),
		Notes:         deref(r.Notes),
		Date:          deref(r.Date),
	}
	rec, err := prediction.NewRecord(in)
	if err != nil {
		return model.TransactionRecord{}, err
	}

	if r.Amount != nil {
		if err := prediction.CheckAmount(*r.Amount); err != nil {
			return model.TransactionRecord{}, err
		}
		rec.Amount = *r.Amount
		rec.HasAmount = true
	}
	return rec, nil
}

// RequestFromRecord converts a record back to its wire form.
func RequestFromRecord(rec model.TransactionRecord) Request {
	req := Request{
		ModelType:   ptr(string(rec.ModelType)),
		PatientUUID: optional(rec.PatientID),
		CDTCode:     optional(rec.ProcedureCode),
		Notes:       optional(rec.Notes),
	}
	if rec.HasAmount {
		amount := rec.Amount
		req.Amount = &amount
	}
	if rec.HasDate {
		req.Date = ptr(rec.DateString())
	}
	return req
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

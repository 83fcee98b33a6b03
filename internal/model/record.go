package model

import (
	"fmt"
	"strings"
	"time"
)

// OperationType categorizes a bank operation.
type OperationType string

const (
	TypeDebit      OperationType = "debit"
	TypeCredit     OperationType = "credit"
	TypeFee        OperationType = "fee"
	TypeTransfer   OperationType = "transfer"
	TypeAdjustment OperationType = "adjustment"
)

// operationTypeTags maps each type to its binary wire tag. Tags are part of
// the binary compatibility surface and must never be reassigned.
var operationTypeTags = map[OperationType]byte{
	TypeDebit:      0,
	TypeCredit:     1,
	TypeFee:        2,
	TypeTransfer:   3,
	TypeAdjustment: 4,
}

var tagOperationTypes = func() map[byte]OperationType {
	m := make(map[byte]OperationType, len(operationTypeTags))
	for t, tag := range operationTypeTags {
		m[tag] = t
	}
	return m
}()

// ParseOperationType parses the text form of an operation type.
func ParseOperationType(s string) (OperationType, error) {
	t := OperationType(s)
	if _, ok := operationTypeTags[t]; !ok {
		return "", ValidationError{Field: "operation_type", Reason: fmt.Sprintf("unknown operation type %q", s)}
	}
	return t, nil
}

// OperationTypeFromTag maps a binary wire tag back to its type.
func OperationTypeFromTag(tag byte) (OperationType, error) {
	t, ok := tagOperationTypes[tag]
	if !ok {
		return "", ValidationError{Field: "operation_type", Reason: fmt.Sprintf("unknown operation type tag %d", tag)}
	}
	return t, nil
}

// Tag returns the binary wire tag for t.
func (t OperationType) Tag() byte {
	return operationTypeTags[t]
}

// ValidationError reports a semantically invalid field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Record is one bank operation. Amount is a minor-unit count (scaled
// integer); the decimal scale is a property of the currency, not the record.
// Records are immutable once constructed: codecs build them, the comparer and
// converter only read them.
type Record struct {
	ID           string
	Date         time.Time // calendar date, UTC midnight
	Amount       int64
	Currency     string
	Counterparty string
	Description  string
	Type         OperationType
}

// New validates raw field values and returns a Record. The date is
// normalized to UTC midnight.
func New(id string, date time.Time, amount int64, currencyCode, counterparty, description string, opType OperationType) (Record, error) {
	r := Record{
		ID:           id,
		Date:         time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Amount:       amount,
		Currency:     currencyCode,
		Counterparty: counterparty,
		Description:  description,
		Type:         opType,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the field-level invariants that hold regardless of which
// format the record came from.
func (r Record) Validate() error {
	if r.ID == "" {
		return ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.Date.IsZero() {
		return ValidationError{Field: "occurred_at", Reason: "must be a valid calendar date"}
	}
	if len(r.Currency) != 3 {
		return ValidationError{Field: "currency", Reason: fmt.Sprintf("must be a 3-letter code, got %q", r.Currency)}
	}
	for _, c := range r.Currency {
		if c < 'A' || c > 'Z' {
			return ValidationError{Field: "currency", Reason: fmt.Sprintf("must be uppercase letters, got %q", r.Currency)}
		}
	}
	if _, ok := operationTypeTags[r.Type]; !ok {
		return ValidationError{Field: "operation_type", Reason: fmt.Sprintf("unknown operation type %q", r.Type)}
	}
	// Line breaks in text fields are LF-only: a carriage return cannot
	// survive a csv round trip, so it is invalid in every format.
	for field, value := range map[string]string{
		"id":           r.ID,
		"counterparty": r.Counterparty,
		"description":  r.Description,
	} {
		if strings.ContainsRune(value, '\r') {
			return ValidationError{Field: field, Reason: "must not contain carriage returns"}
		}
	}
	return nil
}

// Equal reports field-wise structural equality.
func (r Record) Equal(other Record) bool {
	return r.ID == other.ID &&
		r.Date.Equal(other.Date) &&
		r.Amount == other.Amount &&
		r.Currency == other.Currency &&
		r.Counterparty == other.Counterparty &&
		r.Description == other.Description &&
		r.Type == other.Type
}

// ValidateSequence enforces the sequence-level invariant that ids are unique.
func ValidateSequence(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate id %q", r.ID)}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

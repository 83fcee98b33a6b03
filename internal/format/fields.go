package format

import (
	"fmt"
	"time"

	"github.com/bankrec-dev/bankrec/internal/currency"
	"github.com/bankrec-dev/bankrec/internal/model"
)

// Canonical field names. The csv header and the txt block labels are built
// from these; both are part of the compatibility surface.
const (
	fieldID            = "id"
	fieldOccurredAt    = "occurred_at"
	fieldAmount        = "amount"
	fieldCurrency      = "currency"
	fieldCounterparty  = "counterparty"
	fieldDescription   = "description"
	fieldOperationType = "operation_type"
)

// fieldNames is the canonical field order.
var fieldNames = []string{
	fieldID,
	fieldOccurredAt,
	fieldAmount,
	fieldCurrency,
	fieldCounterparty,
	fieldDescription,
	fieldOperationType,
}

const dateFormat = "2006-01-02"

// Default returns a registry with the built-in codecs, using scales to
// render and parse amounts. A nil table means the built-in currency scales.
func Default(scales *currency.Table) *Registry {
	if scales == nil {
		scales = currency.Default()
	}
	r := NewRegistry()
	r.Register(&BinaryCodec{})
	r.Register(&CSVCodec{Scales: scales})
	r.Register(&TextCodec{Scales: scales})
	return r
}

// buildRecord converts the textual form of the seven fields into a validated
// Record. Shared by the csv and txt codecs.
func buildRecord(id, date, amount, code, counterparty, description, opType string, scales *currency.Table) (model.Record, error) {
	occurred, err := time.Parse(dateFormat, date)
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing %s %q: %w", fieldOccurredAt, date, err)
	}

	typ, err := model.ParseOperationType(opType)
	if err != nil {
		return model.Record{}, err
	}

	minor, err := currency.ParseAmount(amount, scales.Scale(code))
	if err != nil {
		return model.Record{}, model.ValidationError{Field: fieldAmount, Reason: err.Error()}
	}

	return model.New(id, occurred, minor, code, counterparty, description, typ)
}

// renderAmount formats a record's minor-unit amount at its currency's scale.
func renderAmount(r model.Record, scales *currency.Table) string {
	return currency.FormatAmount(r.Amount, scales.Scale(r.Currency))
}

// Package compare aligns two record sequences by id and reports their
// differences. Alignment is by key, never by position: the two inputs may
// list the same records in a different order and still compare equal.
package compare

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bankrec-dev/bankrec/internal/currency"
	"github.com/bankrec-dev/bankrec/internal/model"
)

// DuplicateIDError means one input sequence contains the same id twice,
// which makes the comparison undefined.
type DuplicateIDError struct {
	ID string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate record id %q", e.ID)
}

// FieldDiff is one differing field of a changed record.
type FieldDiff struct {
	Field string
	Left  string
	Right string
}

// Changed is a record present in both sequences with differing fields.
type Changed struct {
	ID     string
	Fields []FieldDiff
}

// Report is the structured outcome of comparing two sequences. Added,
// Removed, and Changed are sorted by id so the report is deterministic
// regardless of input order.
type Report struct {
	Added          []model.Record
	Removed        []model.Record
	Changed        []Changed
	UnchangedCount int
}

// Empty reports whether the two sequences describe the same records.
func (r Report) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Compare diffs two record sequences. Records only in left are Removed,
// records only in right are Added, and records in both are diffed field by
// field. scales is used to render amounts in field diffs; nil means the
// built-in currency scales.
func Compare(left, right []model.Record, scales *currency.Table) (Report, error) {
	if scales == nil {
		scales = currency.Default()
	}

	leftByID, err := indexByID(left)
	if err != nil {
		return Report{}, err
	}
	rightByID, err := indexByID(right)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for id, l := range leftByID {
		r, ok := rightByID[id]
		if !ok {
			report.Removed = append(report.Removed, l)
			continue
		}
		if l.Equal(r) {
			report.UnchangedCount++
			continue
		}
		report.Changed = append(report.Changed, Changed{ID: id, Fields: diffFields(l, r, scales)})
	}
	for id, r := range rightByID {
		if _, ok := leftByID[id]; !ok {
			report.Added = append(report.Added, r)
		}
	}

	slices.SortFunc(report.Added, func(a, b model.Record) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(report.Removed, func(a, b model.Record) int { return strings.Compare(a.ID, b.ID) })
	slices.SortFunc(report.Changed, func(a, b Changed) int { return strings.Compare(a.ID, b.ID) })
	return report, nil
}

func indexByID(records []model.Record) (map[string]model.Record, error) {
	byID := make(map[string]model.Record, len(records))
	for _, rec := range records {
		if _, dup := byID[rec.ID]; dup {
			return nil, DuplicateIDError{ID: rec.ID}
		}
		byID[rec.ID] = rec
	}
	return byID, nil
}

// diffFields lists each field whose value differs, in canonical field order.
func diffFields(l, r model.Record, scales *currency.Table) []FieldDiff {
	var diffs []FieldDiff
	add := func(field, left, right string) {
		if left != right {
			diffs = append(diffs, FieldDiff{Field: field, Left: left, Right: right})
		}
	}

	add("occurred_at", l.Date.Format("2006-01-02"), r.Date.Format("2006-01-02"))
	// Amount equality is on minor units; equal counts under different
	// currencies are a currency diff, not an amount diff.
	if l.Amount != r.Amount {
		add("amount",
			currency.FormatAmount(l.Amount, scales.Scale(l.Currency)),
			currency.FormatAmount(r.Amount, scales.Scale(r.Currency)))
	}
	add("currency", l.Currency, r.Currency)
	add("counterparty", l.Counterparty, r.Counterparty)
	add("description", l.Description, r.Description)
	add("operation_type", string(l.Type), string(r.Type))
	return diffs
}

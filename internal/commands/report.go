package commands

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bankrec-dev/bankrec/internal/compare"
	"github.com/bankrec-dev/bankrec/internal/currency"
	"github.com/bankrec-dev/bankrec/internal/model"
)

// recordView is the presentation form of a record in a rendered report.
type recordView struct {
	ID            string `yaml:"id"`
	OccurredAt    string `yaml:"occurred_at"`
	Amount        string `yaml:"amount"`
	Currency      string `yaml:"currency"`
	Counterparty  string `yaml:"counterparty"`
	Description   string `yaml:"description"`
	OperationType string `yaml:"operation_type"`
}

type fieldDiffView struct {
	Field string `yaml:"field"`
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

type changedView struct {
	ID     string          `yaml:"id"`
	Fields []fieldDiffView `yaml:"fields"`
}

type reportView struct {
	Added          []recordView  `yaml:"added"`
	Removed        []recordView  `yaml:"removed"`
	Changed        []changedView `yaml:"changed"`
	UnchangedCount int           `yaml:"unchanged_count"`
}

func newRecordView(r model.Record, scales *currency.Table) recordView {
	return recordView{
		ID:            r.ID,
		OccurredAt:    r.Date.Format("2006-01-02"),
		Amount:        currency.FormatAmount(r.Amount, scales.Scale(r.Currency)),
		Currency:      r.Currency,
		Counterparty:  r.Counterparty,
		Description:   r.Description,
		OperationType: string(r.Type),
	}
}

func newReportView(report compare.Report, scales *currency.Table) reportView {
	view := reportView{
		Added:          make([]recordView, 0, len(report.Added)),
		Removed:        make([]recordView, 0, len(report.Removed)),
		Changed:        make([]changedView, 0, len(report.Changed)),
		UnchangedCount: report.UnchangedCount,
	}
	for _, r := range report.Added {
		view.Added = append(view.Added, newRecordView(r, scales))
	}
	for _, r := range report.Removed {
		view.Removed = append(view.Removed, newRecordView(r, scales))
	}
	for _, c := range report.Changed {
		cv := changedView{ID: c.ID}
		for _, f := range c.Fields {
			cv.Fields = append(cv.Fields, fieldDiffView(f))
		}
		view.Changed = append(view.Changed, cv)
	}
	return view
}

// renderReport writes the diff report in the requested style.
func renderReport(w io.Writer, report compare.Report, style string, scales *currency.Table) error {
	switch style {
	case "text":
		return renderText(w, report, scales)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(newReportView(report, scales)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report style %q (supported: text, yaml)", style)
	}
}

func renderText(w io.Writer, report compare.Report, scales *currency.Table) error {
	if report.Empty() {
		_, err := fmt.Fprintf(w, "Files are identical (%d records).\n", report.UnchangedCount)
		return err
	}

	if len(report.Removed) > 0 {
		fmt.Fprintf(w, "Removed (%d):\n", len(report.Removed))
		for _, r := range report.Removed {
			writeRecordLine(w, "-", r, scales)
		}
	}
	if len(report.Added) > 0 {
		fmt.Fprintf(w, "Added (%d):\n", len(report.Added))
		for _, r := range report.Added {
			writeRecordLine(w, "+", r, scales)
		}
	}
	if len(report.Changed) > 0 {
		fmt.Fprintf(w, "Changed (%d):\n", len(report.Changed))
		for _, c := range report.Changed {
			fmt.Fprintf(w, "  ~ %s\n", c.ID)
			for _, f := range c.Fields {
				fmt.Fprintf(w, "      %s: %q -> %q\n", f.Field, f.Left, f.Right)
			}
		}
	}
	_, err := fmt.Fprintf(w, "Unchanged: %d\n", report.UnchangedCount)
	return err
}

func writeRecordLine(w io.Writer, marker string, r model.Record, scales *currency.Table) {
	fmt.Fprintf(w, "  %s %s  %s  %s %s  %s\n",
		marker, r.ID, r.Date.Format("2006-01-02"),
		currency.FormatAmount(r.Amount, scales.Scale(r.Currency)), r.Currency, r.Type)
}

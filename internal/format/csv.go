package format

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bankrec-dev/bankrec/internal/currency"
	"github.com/bankrec-dev/bankrec/internal/model"
)

// CSVHeader is the fixed header row of the csv representation.
var CSVHeader = strings.Join(fieldNames, ",")

const (
	numFields = 7
	colID     = 0
	colDate   = 1
	colAmount = 2
	colCur    = 3
	colCparty = 4
	colDesc   = 5
	colType   = 6
)

// CSVCodec reads and writes the delimited tabular representation. Quoting
// follows RFC 4180: values containing the delimiter, quotes, or newlines are
// wrapped in quotes with embedded quotes doubled.
type CSVCodec struct {
	Scales *currency.Table
}

// Name returns the format identifier.
func (c *CSVCodec) Name() string { return "csv" }

// Match reports whether data starts with the csv header row.
func (c *CSVCodec) Match(data []byte) bool {
	return bytes.HasPrefix(data, []byte(CSVHeader+"\n")) ||
		bytes.HasPrefix(data, []byte(CSVHeader+"\r\n")) ||
		string(data) == CSVHeader
}

// Decode parses csv text into a record sequence, failing on the first
// malformed row.
func (c *CSVCodec) Decode(data []byte) ([]model.Record, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = numFields

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ParseError{Line: 1, Reason: "missing header row"}
		}
		return nil, csvError(err)
	}
	if got := strings.Join(header, ","); got != CSVHeader {
		return nil, ParseError{Line: 1, Reason: fmt.Sprintf("bad header %q, expected %q", got, CSVHeader)}
	}

	var records []model.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := buildRecord(row[colID], row[colDate], row[colAmount], row[colCur],
			row[colCparty], row[colDesc], row[colType], c.Scales)
		if err != nil {
			return nil, ParseError{Line: line, Err: err}
		}
		records = append(records, rec)
	}

	if err := model.ValidateSequence(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Encode writes the header followed by one row per record in sequence order.
func (c *CSVCodec) Encode(records []model.Record) ([]byte, error) {
	if err := validateAll(records); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(fieldNames); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range records {
		row := make([]string, numFields)
		row[colID] = rec.ID
		row[colDate] = rec.Date.Format(dateFormat)
		row[colAmount] = renderAmount(rec, c.Scales)
		row[colCur] = rec.Currency
		row[colCparty] = rec.Counterparty
		row[colDesc] = rec.Description
		row[colType] = string(rec.Type)
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// csvError converts an encoding/csv error into a ParseError with the line
// number the csv reader reported.
func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return ParseError{Line: perr.Line, Err: perr.Err}
	}
	return ParseError{Line: 1, Err: err}
}

// validateAll checks field and sequence invariants before encoding.
func validateAll(records []model.Record) error {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	return model.ValidateSequence(records)
}

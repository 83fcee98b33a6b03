package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bankrec-dev/bankrec/internal/currency"
	"github.com/bankrec-dev/bankrec/internal/model"
)

// continuationIndent prefixes each extra line of a multi-line value.
const continuationIndent = "  "

// textLabels is the set of labels a block may contain.
var textLabels = func() map[string]struct{} {
	m := make(map[string]struct{}, len(fieldNames))
	for _, name := range fieldNames {
		m[name] = struct{}{}
	}
	return m
}()

// TextCodec reads and writes the descriptive text representation: one
// labeled "key: value" block per record, blocks separated by a blank line.
// Labels may appear in any order within a block; encoding always emits the
// canonical order. Embedded newlines become indented continuation lines.
type TextCodec struct {
	Scales *currency.Table
}

// Name returns the format identifier.
func (c *TextCodec) Name() string { return "txt" }

// Match reports whether the first line looks like a block label.
func (c *TextCodec) Match(data []byte) bool {
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	key, _, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}
	_, known := textLabels[key]
	return known
}

// Decode parses labeled blocks into a record sequence.
func (c *TextCodec) Decode(data []byte) ([]model.Record, error) {
	text := strings.TrimSuffix(string(data), "\n")

	var (
		records   []model.Record
		fields    map[string]string
		lastField string
		startLine int
	)

	flush := func() error {
		if fields == nil {
			return nil
		}
		rec, err := c.buildBlock(fields, startLine)
		if err != nil {
			return err
		}
		records = append(records, rec)
		fields = nil
		lastField = ""
		return nil
	}

	for i, line := range strings.Split(text, "\n") {
		// Tolerate CRLF line endings; \r inside a value is caught by
		// record validation.
		line = strings.TrimSuffix(line, "\r")
		lineNum := i + 1

		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastField == "" {
				return nil, ParseError{Line: lineNum, Reason: "continuation line without a field"}
			}
			cont, ok := strings.CutPrefix(line, continuationIndent)
			if !ok {
				return nil, ParseError{Line: lineNum, Reason: "continuation lines must be indented with two spaces"}
			}
			fields[lastField] += "\n" + cont
			continue
		}

		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, ParseError{Line: lineNum, Reason: fmt.Sprintf("expected %q line, got %q", "key: value", line)}
		}
		if _, known := textLabels[key]; !known {
			return nil, ParseError{Line: lineNum, Reason: fmt.Sprintf("unknown field %q", key)}
		}
		if fields == nil {
			fields = make(map[string]string, len(fieldNames))
			startLine = lineNum
		}
		if _, dup := fields[key]; dup {
			return nil, ParseError{Line: lineNum, Reason: fmt.Sprintf("duplicate field %q", key)}
		}
		fields[key] = strings.TrimPrefix(rest, " ")
		lastField = key
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := model.ValidateSequence(records); err != nil {
		return nil, err
	}
	return records, nil
}

// buildBlock converts one completed block into a Record, checking that all
// seven labels are present.
func (c *TextCodec) buildBlock(fields map[string]string, startLine int) (model.Record, error) {
	for _, name := range fieldNames {
		if _, ok := fields[name]; !ok {
			return model.Record{}, ParseError{Line: startLine, Reason: fmt.Sprintf("missing field %q", name)}
		}
	}
	rec, err := buildRecord(fields[fieldID], fields[fieldOccurredAt], fields[fieldAmount],
		fields[fieldCurrency], fields[fieldCounterparty], fields[fieldDescription],
		fields[fieldOperationType], c.Scales)
	if err != nil {
		return model.Record{}, ParseError{Line: startLine, Err: err}
	}
	return rec, nil
}

// Encode writes one block per record, fields in canonical order, blocks
// separated by exactly one blank line and no trailing blank line.
func (c *TextCodec) Encode(records []model.Record) ([]byte, error) {
	if err := validateAll(records); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		writeField(&buf, fieldID, rec.ID)
		writeField(&buf, fieldOccurredAt, rec.Date.Format(dateFormat))
		writeField(&buf, fieldAmount, renderAmount(rec, c.Scales))
		writeField(&buf, fieldCurrency, rec.Currency)
		writeField(&buf, fieldCounterparty, rec.Counterparty)
		writeField(&buf, fieldDescription, rec.Description)
		writeField(&buf, fieldOperationType, string(rec.Type))
	}
	return buf.Bytes(), nil
}

// writeField emits one "key: value" line plus indented continuation lines
// for any embedded newlines.
func writeField(buf *bytes.Buffer, key, value string) {
	lines := strings.Split(value, "\n")

	buf.WriteString(key)
	buf.WriteByte(':')
	if lines[0] != "" {
		buf.WriteByte(' ')
		buf.WriteString(lines[0])
	}
	buf.WriteByte('\n')

	for _, cont := range lines[1:] {
		buf.WriteString(continuationIndent)
		buf.WriteString(cont)
		buf.WriteByte('\n')
	}
}

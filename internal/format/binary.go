package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/bankrec-dev/bankrec/internal/model"
)

// binaryMagic identifies the binary representation unambiguously.
var binaryMagic = []byte{'B', 'R', 'E', 'C'}

// BinaryVersion is the current binary layout version. Decoding any other
// version is a hard UnsupportedVersionError.
const BinaryVersion = 1

// binaryHeaderSize is magic (4) + version (1) + record count (4).
const binaryHeaderSize = 9

var unixEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// BinaryCodec reads and writes the compact binary representation. This is
// the only byte-stable format: decode(encode(x)) reproduces x exactly.
//
// Layout, all integers little-endian:
//
//	magic "BREC" | version u8 | record count u32
//	per record:
//	  id       u16 length + bytes
//	  date     i32 days since 1970-01-01
//	  amount   i64 minor units
//	  currency 3 bytes
//	  type     u8 tag
//	  counterparty u16 length + UTF-8 bytes
//	  description  u16 length + UTF-8 bytes
type BinaryCodec struct{}

// Name returns the format identifier.
func (c *BinaryCodec) Name() string { return "bin" }

// Match reports whether data starts with the binary magic.
func (c *BinaryCodec) Match(data []byte) bool {
	return bytes.HasPrefix(data, binaryMagic)
}

// Decode parses the binary representation. Magic and version are checked
// before any record is read.
func (c *BinaryCodec) Decode(data []byte) ([]model.Record, error) {
	if len(data) < len(binaryMagic) || !bytes.Equal(data[:len(binaryMagic)], binaryMagic) {
		return nil, ParseError{Offset: 0, Reason: "bad magic"}
	}
	if len(data) < binaryHeaderSize {
		return nil, ParseError{Offset: len(data), Reason: "unexpected end of input"}
	}
	if v := data[4]; v != BinaryVersion {
		return nil, UnsupportedVersionError{Version: v}
	}
	count := binary.LittleEndian.Uint32(data[5:9])

	// Capacity comes from the untrusted count only after a sanity bound: a
	// record is at least 22 bytes on the wire.
	cur := &cursor{data: data, off: binaryHeaderSize}
	if uint64(count)*22 > uint64(len(data)-binaryHeaderSize) {
		return nil, ParseError{Offset: len(data), Reason: "unexpected end of input"}
	}
	records := make([]model.Record, 0, count)
	for i := uint32(0); i < count; i++ {
		rec, err := readRecord(cur)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if cur.off != len(data) {
		return nil, ParseError{Offset: cur.off, Reason: "trailing data after last record"}
	}

	if err := model.ValidateSequence(records); err != nil {
		return nil, err
	}
	return records, nil
}

func readRecord(cur *cursor) (model.Record, error) {
	id, err := cur.lenPrefixed(fieldID)
	if err != nil {
		return model.Record{}, err
	}

	days, err := cur.int32()
	if err != nil {
		return model.Record{}, err
	}
	date := unixEpoch.AddDate(0, 0, int(days))

	amount, err := cur.int64()
	if err != nil {
		return model.Record{}, err
	}

	code, err := cur.take(3)
	if err != nil {
		return model.Record{}, err
	}

	tag, err := cur.byte()
	if err != nil {
		return model.Record{}, err
	}
	typ, err := model.OperationTypeFromTag(tag)
	if err != nil {
		return model.Record{}, err
	}

	counterparty, err := cur.lenPrefixed(fieldCounterparty)
	if err != nil {
		return model.Record{}, err
	}
	description, err := cur.lenPrefixed(fieldDescription)
	if err != nil {
		return model.Record{}, err
	}

	return model.New(id, date, amount, string(code), counterparty, description, typ)
}

// Encode writes the header then records in sequence order.
func (c *BinaryCodec) Encode(records []model.Record) ([]byte, error) {
	if err := validateAll(records); err != nil {
		return nil, err
	}
	if len(records) > math.MaxUint32 {
		return nil, fmt.Errorf("sequence of %d records exceeds the binary record count", len(records))
	}

	var buf bytes.Buffer
	buf.Write(binaryMagic)
	buf.WriteByte(BinaryVersion)
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(records))))

	for _, rec := range records {
		if err := writeRecord(&buf, rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, rec model.Record) error {
	if err := writeLenPrefixed(buf, fieldID, rec.ID); err != nil {
		return err
	}

	days := rec.Date.Sub(unixEpoch) / (24 * time.Hour)
	if days < math.MinInt32 || days > math.MaxInt32 {
		return model.ValidationError{Field: fieldOccurredAt, Reason: fmt.Sprintf("date %s is outside the binary range", rec.Date.Format(dateFormat))}
	}
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(int32(days))))

	buf.Write(binary.LittleEndian.AppendUint64(nil, uint64(rec.Amount)))
	buf.WriteString(rec.Currency)
	buf.WriteByte(rec.Type.Tag())

	if err := writeLenPrefixed(buf, fieldCounterparty, rec.Counterparty); err != nil {
		return err
	}
	return writeLenPrefixed(buf, fieldDescription, rec.Description)
}

func writeLenPrefixed(buf *bytes.Buffer, field, value string) error {
	if len(value) > math.MaxUint16 {
		return model.ValidationError{Field: field, Reason: fmt.Sprintf("%d bytes exceeds the %d-byte binary limit", len(value), math.MaxUint16)}
	}
	buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(len(value))))
	buf.WriteString(value)
	return nil
}

// cursor walks a binary buffer, turning out-of-bounds reads into ParseErrors
// that carry the offset of the failed read.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) take(n int) ([]byte, error) {
	if c.off+n > len(c.data) {
		return nil, ParseError{Offset: c.off, Reason: "unexpected end of input"}
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) int32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (c *cursor) int64() (int64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// lenPrefixed reads a u16 length followed by that many UTF-8 bytes.
func (c *cursor) lenPrefixed(field string) (string, error) {
	b, err := c.take(2)
	if err != nil {
		return "", err
	}
	raw, err := c.take(int(binary.LittleEndian.Uint16(b)))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", model.ValidationError{Field: field, Reason: "invalid UTF-8"}
	}
	return string(raw), nil
}

package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankrec-dev/bankrec/internal/model"
)

func TestBinaryRoundTripIsByteStable(t *testing.T) {
	records := testRecords(t)
	c := &BinaryCodec{}

	out, err := c.Encode(records)
	require.NoError(t, err)

	got, err := c.Decode(out)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.True(t, records[i].Equal(got[i]), "record %d: %+v != %+v", i, records[i], got[i])
	}

	// The binary form is the byte-stable representation: re-encoding the
	// decoded sequence reproduces the exact bytes.
	again, err := c.Encode(got)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestBinaryHeader(t *testing.T) {
	records := testRecords(t)

	out, err := (&BinaryCodec{}).Encode(records)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(out), binaryHeaderSize)
	assert.Equal(t, []byte("BREC"), out[:4])
	assert.Equal(t, byte(BinaryVersion), out[4])
	assert.Equal(t, uint32(len(records)), binary.LittleEndian.Uint32(out[5:9]))
}

func TestBinaryEmptySequence(t *testing.T) {
	c := &BinaryCodec{}

	out, err := c.Encode(nil)
	require.NoError(t, err)
	assert.Len(t, out, binaryHeaderSize)

	got, err := c.Decode(out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBinaryDecodeBadMagic(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("BR"),
		[]byte("YPBN\x01\x00\x00\x00\x00"),
		[]byte("id,occurred_at"),
	} {
		_, err := (&BinaryCodec{}).Decode(data)
		require.Error(t, err, "input %q", data)
		var perr ParseError
		require.ErrorAs(t, err, &perr, "input %q", data)
		assert.Equal(t, 0, perr.Offset)
		assert.Contains(t, perr.Error(), "bad magic")
	}
}

func TestBinaryDecodeUnsupportedVersion(t *testing.T) {
	data := []byte{'B', 'R', 'E', 'C', 9, 0, 0, 0, 0}

	_, err := (&BinaryCodec{}).Decode(data)
	require.Error(t, err)
	var verr UnsupportedVersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, byte(9), verr.Version)
}

func TestBinaryDecodeTruncated(t *testing.T) {
	records := testRecords(t)
	c := &BinaryCodec{}
	out, err := c.Encode(records)
	require.NoError(t, err)

	// Cut the buffer at every point past the magic; each cut must fail with
	// either a truncated header or an unexpected-end ParseError, never a
	// partial sequence.
	for cut := 4; cut < len(out); cut++ {
		_, err := c.Decode(out[:cut])
		require.Error(t, err, "cut at %d", cut)
		var perr ParseError
		require.ErrorAs(t, err, &perr, "cut at %d", cut)
		assert.Contains(t, perr.Error(), "unexpected end of input", "cut at %d", cut)
	}
}

func TestBinaryDecodeTrailingData(t *testing.T) {
	c := &BinaryCodec{}
	out, err := c.Encode(testRecords(t))
	require.NoError(t, err)

	_, err = c.Decode(append(out, 0xFF))
	require.Error(t, err)
	var perr ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, len(out), perr.Offset)
	assert.Contains(t, perr.Error(), "trailing data")
}

func TestBinaryDecodeUnknownTypeTag(t *testing.T) {
	c := &BinaryCodec{}
	records := testRecords(t)[:1]
	out, err := c.Encode(records)
	require.NoError(t, err)

	// The type tag sits after the id (2+len), date (4), amount (8), and
	// currency (3) of the first record.
	tagOffset := binaryHeaderSize + 2 + len(records[0].ID) + 4 + 8 + 3
	out[tagOffset] = 99

	_, err = c.Decode(out)
	require.Error(t, err)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "operation_type", verr.Field)
}

func TestBinaryDecodeInvalidUTF8(t *testing.T) {
	c := &BinaryCodec{}
	rec, err := model.New("t", date(2024, 1, 1), 1, "USD", "", "ab", model.TypeDebit)
	require.NoError(t, err)
	out, err := c.Encode([]model.Record{rec})
	require.NoError(t, err)

	out[len(out)-1] = 0xFF // corrupt the description bytes

	_, err = c.Decode(out)
	require.Error(t, err)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)
}

func TestBinaryNegativeDays(t *testing.T) {
	// Dates before the Unix epoch are encoded as negative day counts.
	c := &BinaryCodec{}
	rec, err := model.New("t", date(1969, 12, 25), 1, "USD", "", "", model.TypeDebit)
	require.NoError(t, err)

	out, err := c.Encode([]model.Record{rec})
	require.NoError(t, err)

	got, err := c.Decode(out)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(date(1969, 12, 25)))
}

func TestBinaryEncodeOversizedField(t *testing.T) {
	long := make([]byte, 70000)
	for i := range long {
		long[i] = 'x'
	}
	rec, err := model.New("t", date(2024, 1, 1), 1, "USD", "", string(long), model.TypeDebit)
	require.NoError(t, err)

	_, err = (&BinaryCodec{}).Encode([]model.Record{rec})
	require.Error(t, err)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)
}

func TestBinaryDecodeDuplicateID(t *testing.T) {
	c := &BinaryCodec{}
	rec, err := model.New("t", date(2024, 1, 1), 1, "USD", "", "", model.TypeDebit)
	require.NoError(t, err)

	out, err := c.Encode([]model.Record{rec})
	require.NoError(t, err)

	// Splice the record bytes in twice and fix up the count.
	body := out[binaryHeaderSize:]
	dup := append(append([]byte{}, out...), body...)
	binary.LittleEndian.PutUint32(dup[5:9], 2)

	_, err = c.Decode(dup)
	require.Error(t, err)
	var verr model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestBinaryMatch(t *testing.T) {
	c := &BinaryCodec{}
	assert.True(t, c.Match([]byte("BREC\x01rest")))
	assert.False(t, c.Match([]byte("BRE")))
	assert.False(t, c.Match([]byte(CSVHeader)))
}

package compare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankrec-dev/bankrec/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func rec(t *testing.T, id string, amount int64, desc string) model.Record {
	t.Helper()
	r, err := model.New(id, date(2024, 1, 5), amount, "USD", "ACME", desc, model.TypeDebit)
	require.NoError(t, err)
	return r
}

func TestCompareIdentical(t *testing.T) {
	seq := []model.Record{rec(t, "tx-001", 100, "a"), rec(t, "tx-002", 200, "b")}

	report, err := Compare(seq, seq, nil)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Changed)
	assert.Equal(t, 2, report.UnchangedCount)
}

func TestCompareIgnoresOrder(t *testing.T) {
	a := rec(t, "tx-001", 100, "a")
	b := rec(t, "tx-002", 200, "b")

	report, err := Compare([]model.Record{a, b}, []model.Record{b, a}, nil)
	require.NoError(t, err)
	assert.True(t, report.Empty(), "alignment is by id, not position")
	assert.Equal(t, 2, report.UnchangedCount)
}

func TestCompareAddedRemoved(t *testing.T) {
	left := []model.Record{rec(t, "tx-001", 100, "a"), rec(t, "tx-002", 200, "b")}
	right := []model.Record{rec(t, "tx-002", 200, "b"), rec(t, "tx-003", 300, "c")}

	report, err := Compare(left, right, nil)
	require.NoError(t, err)
	require.Len(t, report.Removed, 1)
	assert.Equal(t, "tx-001", report.Removed[0].ID)
	require.Len(t, report.Added, 1)
	assert.Equal(t, "tx-003", report.Added[0].ID)
	assert.Empty(t, report.Changed)
	assert.Equal(t, 1, report.UnchangedCount)
	assert.False(t, report.Empty())
}

func TestCompareChangedAmount(t *testing.T) {
	left := []model.Record{rec(t, "tx-001", 1000, "a"), rec(t, "tx-002", 200, "b")}
	right := []model.Record{rec(t, "tx-001", 1200, "a"), rec(t, "tx-002", 200, "b")}

	report, err := Compare(left, right, nil)
	require.NoError(t, err)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, 1, report.UnchangedCount)

	ch := report.Changed[0]
	assert.Equal(t, "tx-001", ch.ID)
	require.Len(t, ch.Fields, 1)
	assert.Equal(t, FieldDiff{Field: "amount", Left: "10.00", Right: "12.00"}, ch.Fields[0])
}

func TestCompareChangedMultipleFields(t *testing.T) {
	l, err := model.New("tx-001", date(2024, 1, 5), 100, "USD", "ACME", "a", model.TypeDebit)
	require.NoError(t, err)
	r, err := model.New("tx-001", date(2024, 1, 6), 100, "USD", "ACME Inc", "a", model.TypeFee)
	require.NoError(t, err)

	report, err := Compare([]model.Record{l}, []model.Record{r}, nil)
	require.NoError(t, err)
	require.Len(t, report.Changed, 1)

	fields := make([]string, 0, len(report.Changed[0].Fields))
	for _, f := range report.Changed[0].Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"occurred_at", "counterparty", "operation_type"}, fields, "diffs follow canonical field order")
}

func TestCompareEqualAmountDifferentCurrency(t *testing.T) {
	// 100 minor units of JPY and of USD render differently ("100" vs
	// "1.00") but the amount field itself is equal; only currency differs.
	l, err := model.New("tx-001", date(2024, 1, 5), 100, "JPY", "ACME", "a", model.TypeDebit)
	require.NoError(t, err)
	r, err := model.New("tx-001", date(2024, 1, 5), 100, "USD", "ACME", "a", model.TypeDebit)
	require.NoError(t, err)

	report, err := Compare([]model.Record{l}, []model.Record{r}, nil)
	require.NoError(t, err)
	require.Len(t, report.Changed, 1)
	require.Len(t, report.Changed[0].Fields, 1)
	assert.Equal(t, FieldDiff{Field: "currency", Left: "JPY", Right: "USD"}, report.Changed[0].Fields[0])
}

func TestCompareSymmetry(t *testing.T) {
	left := []model.Record{rec(t, "tx-001", 100, "a"), rec(t, "tx-002", 200, "b")}
	right := []model.Record{rec(t, "tx-002", 250, "b"), rec(t, "tx-003", 300, "c")}

	fwd, err := Compare(left, right, nil)
	require.NoError(t, err)
	rev, err := Compare(right, left, nil)
	require.NoError(t, err)

	assert.Equal(t, fwd.Added, rev.Removed)
	assert.Equal(t, fwd.Removed, rev.Added)
	assert.Equal(t, fwd.UnchangedCount, rev.UnchangedCount)

	require.Len(t, fwd.Changed, 1)
	require.Len(t, rev.Changed, 1)
	assert.Equal(t, fwd.Changed[0].ID, rev.Changed[0].ID)
	for i, f := range fwd.Changed[0].Fields {
		assert.Equal(t, f.Left, rev.Changed[0].Fields[i].Right)
		assert.Equal(t, f.Right, rev.Changed[0].Fields[i].Left)
	}
}

func TestCompareSortsByID(t *testing.T) {
	left := []model.Record{rec(t, "tx-009", 1, "x"), rec(t, "tx-002", 1, "x"), rec(t, "tx-005", 1, "x")}

	report, err := Compare(left, nil, nil)
	require.NoError(t, err)
	require.Len(t, report.Removed, 3)
	assert.Equal(t, "tx-002", report.Removed[0].ID)
	assert.Equal(t, "tx-005", report.Removed[1].ID)
	assert.Equal(t, "tx-009", report.Removed[2].ID)
}

func TestCompareDuplicateID(t *testing.T) {
	dup := []model.Record{rec(t, "tx-001", 100, "a"), rec(t, "tx-001", 200, "b")}

	_, err := Compare(dup, nil, nil)
	require.Error(t, err)
	var derr DuplicateIDError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "tx-001", derr.ID)

	_, err = Compare(nil, dup, nil)
	assert.Error(t, err)
}

func TestCompareEmptySequences(t *testing.T) {
	report, err := Compare(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Equal(t, 0, report.UnchangedCount)
}

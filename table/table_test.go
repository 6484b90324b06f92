package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWide(t *testing.T) *Wide {
	w, err := New(
		[]string{"coicop", "geo", "2024-01", "2024-02"},
		[][]string{
			{"CP00", "AT", "4.3", "4.2"},
			{"CP00", "EA20", "2.8", ""},
			{"NRG", "AT", "-5.0", "-4.1"},
		},
	)
	require.NoError(t, err)
	return w
}

func TestNew(t *testing.T) {
	_, err := New([]string{"a", "a"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New([]string{"a", "b"}, [][]string{{"1"}})
	assert.ErrorIs(t, err, ErrRowWidth)
}

func TestColumns(t *testing.T) {
	w := testWide(t)
	assert.Equal(t, []int{2, 3}, w.PeriodColumns())
	assert.Equal(t, []int{0, 1}, w.IDColumns())
	assert.True(t, w.Has("geo", "coicop"))
	assert.False(t, w.Has("unit"))

	require.NoError(t, w.Rename("geo", "region"))
	assert.Equal(t, 1, w.Index("region"))
	assert.ErrorIs(t, w.Rename("geo", "x"), ErrColumnNotFound)
}

func TestFilterRows(t *testing.T) {
	w := testWide(t)
	out := w.FilterRows(w.In("coicop", "CP00"))
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 3, w.Len())
}

func TestMelt(t *testing.T) {
	cells := testWide(t).Melt()
	require.Len(t, cells, 6)
	assert.Equal(t, "CP00", cells[0].ID["coicop"])
	assert.Equal(t, "AT", cells[0].ID["geo"])
	assert.Equal(t, "2024-01", cells[0].Period)
	assert.Equal(t, "4.3", cells[0].Value)
	assert.Equal(t, "", cells[3].Value)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testWide(t).WriteCSV(&buf))
	assert.Equal(t, "coicop,geo,2024-01,2024-02\nCP00,AT,4.3,4.2\nCP00,EA20,2.8,\nNRG,AT,-5.0,-4.1\n", buf.String())
}

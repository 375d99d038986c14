package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPadsColumns(t *testing.T) {
	rows := [][]string{
		{"id", "title", "size"},
		{"1", "Docs", "12 kB"},
		{"12", "Mail", "3 kB"},
	}
	got := Format(rows, []Column{{Align: AlignRight}, {}, {Align: AlignRight}})
	assert.Equal(t, []string{
		"id  title   size",
		" 1  Docs   12 kB",
		"12  Mail    3 kB",
	}, got)
}

func TestFormatTruncatesToMax(t *testing.T) {
	rows := [][]string{
		{"a very long title indeed", "x"},
		{"short", "y"},
	}
	got := Format(rows, []Column{{Max: 8}, {}})
	require.Len(t, got, 2)
	assert.Equal(t, "a very …  x", got[0])
	assert.Equal(t, "short     y", got[1])
}

func TestFormatMeasuresWideRunes(t *testing.T) {
	rows := [][]string{
		{"日本", "a"},
		{"ab", "b"},
	}
	got := Format(rows, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "ab    b", got[1], "wide runes count double")
}

func TestFormatEmpty(t *testing.T) {
	assert.Nil(t, Format(nil, nil))
}

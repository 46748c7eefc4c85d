package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumns_FirstRecordOnly(t *testing.T) {
	first := NewRecord()
	first.Set("b", NumberValue(1))
	first.Set("a", NumberValue(2))
	second := NewRecord()
	second.Set("c", NumberValue(3))

	require.Equal(t, []string{"b", "a"}, Columns(New([]Record{first, second})))
	require.Empty(t, Columns(New(nil)))
}

func TestDefaultSelection(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, DefaultSelection([]string{"a", "b", "c"}))
	require.Equal(t, []string{"a"}, DefaultSelection([]string{"a"}))
	require.Empty(t, DefaultSelection(nil))
}

func TestValidateSelection(t *testing.T) {
	cols := []string{"a", "b", "c"}
	require.NoError(t, ValidateSelection(cols, []string{"c", "a"}))

	for _, sel := range [][]string{nil, {"z"}, {"a", "a"}} {
		err := ValidateSelection(cols, sel)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrInvalidSelection))
	}
}

func TestValue_StringMatchesBrowserFormatting(t *testing.T) {
	require.Equal(t, "1", NumberValue(1).String())
	require.Equal(t, "2.5", NumberValue(2.5).String())
	require.Equal(t, "-0.125", NumberValue(-0.125).String())
	require.Equal(t, "1e+21", NumberValue(1e21).String())
	require.Equal(t, "undefined", Value{}.String())
	require.Equal(t, "null", NullValue().String())
	require.Equal(t, "x", StringValue("x").String())
}

package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV_CoercesNumbers(t *testing.T) {
	ds, err := Parse([]byte("a,b\n1,2\n3,x"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	require.Equal(t, []string{"a", "b"}, ds.Row(0).Keys())
	require.Equal(t, NumberValue(1), ds.Row(0).Get("a"))
	require.Equal(t, NumberValue(2), ds.Row(0).Get("b"))
	require.Equal(t, NumberValue(3), ds.Row(1).Get("a"))
	require.Equal(t, StringValue("x"), ds.Row(1).Get("b"))
}

func TestParseCSV_TrimsHeadersAndValues(t *testing.T) {
	ds, err := Parse([]byte(" name , score \r\n alice , 4.5 \r\n"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "score"}, Columns(ds))
	require.Equal(t, StringValue("alice"), ds.Row(0).Get("name"))
	require.Equal(t, NumberValue(4.5), ds.Row(0).Get("score"))
}

func TestParseCSV_ShortAndLongLines(t *testing.T) {
	ds, err := Parse([]byte("a,b,c\n1\n4,5,6,7"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	short := ds.Row(0)
	require.Equal(t, NumberValue(1), short.Get("a"))
	require.Equal(t, Absent, short.Get("b").Kind)
	require.Equal(t, Absent, short.Get("c").Kind)

	long := ds.Row(1)
	require.Equal(t, []string{"a", "b", "c"}, long.Keys())
	require.Equal(t, NumberValue(6), long.Get("c"))
}

func TestParseCSV_QuotedCommaShiftsColumns(t *testing.T) {
	ds, err := Parse([]byte("city,pop\n\"Paris, FR\",2100000"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, StringValue(`"Paris`), ds.Row(0).Get("city"))
	require.Equal(t, StringValue(`FR"`), ds.Row(0).Get("pop"))
}

func TestParseCSV_TrailingNewlineYieldsRecord(t *testing.T) {
	ds, err := Parse([]byte("a,b\n1,2\n"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, StringValue(""), ds.Row(1).Get("a"))
	require.Equal(t, Absent, ds.Row(1).Get("b").Kind)
}

func TestParseCSV_NaNTextStaysString(t *testing.T) {
	ds, err := Parse([]byte("v\nNaN\nInfinity"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, StringValue("NaN"), ds.Row(0).Get("v"))
	require.True(t, math.IsInf(ds.Row(1).Get("v").Num, 1))
}

func TestParseCSV_DecimalLiteralsOnly(t *testing.T) {
	ds, err := Parse([]byte("v\ninf\n0x1p4\n1_000\n1e400\n-Infinity\n1.\n.5"), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, StringValue("inf"), ds.Row(0).Get("v"))
	require.Equal(t, StringValue("0x1p4"), ds.Row(1).Get("v"))
	require.Equal(t, StringValue("1_000"), ds.Row(2).Get("v"))
	require.True(t, math.IsInf(ds.Row(3).Get("v").Num, 1))
	require.True(t, math.IsInf(ds.Row(4).Get("v").Num, -1))
	require.Equal(t, NumberValue(1), ds.Row(5).Get("v"))
	require.Equal(t, NumberValue(0.5), ds.Row(6).Get("v"))
}

func TestParseJSON_PreservesKeyOrder(t *testing.T) {
	content := `[{"zeta":1,"alpha":"x","flag":true,"none":null},{"alpha":"y"}]`
	ds, err := Parse([]byte(content), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, []string{"zeta", "alpha", "flag", "none"}, Columns(ds))
	require.Equal(t, StringValue("true"), ds.Row(0).Get("flag"))
	require.Equal(t, Null, ds.Row(0).Get("none").Kind)
	require.Equal(t, Absent, ds.Row(1).Get("zeta").Kind)
}

func TestParseJSON_Rejects(t *testing.T) {
	for _, in := range []string{`{"a":1}`, `[1,2]`, `[{"a":1}`} {
		_, err := Parse([]byte(in), FormatJSON)
		require.Error(t, err, in)
		require.True(t, errors.Is(err, ErrParse), in)
	}
}

func TestParse_UnknownFormatIsParseError(t *testing.T) {
	_, err := Parse([]byte("whatever"), FormatFromName("notes.txt"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrParse))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFormatFromName(t *testing.T) {
	require.Equal(t, FormatCSV, FormatFromName("Data.CSV"))
	require.Equal(t, FormatSpreadsheet, FormatFromName("book.xlsx"))
	require.Equal(t, FormatSpreadsheet, FormatFromName("legacy.xls"))
	require.Equal(t, FormatJSON, FormatFromName("rows.json"))
	require.Equal(t, FormatUnknown, FormatFromName("rows.tsv"))
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"region", "", "sales", "sales"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"north", "n1", 120, 7}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"", "", "", ""}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"south", "", 95.5, 3}))

	_, err := f.NewSheet("Ignored")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Ignored", "A1", &[]any{"other"}))
	require.NoError(t, f.SetSheetRow("Ignored", "A2", &[]any{"value"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestParseSpreadsheet_FirstSheetOnly(t *testing.T) {
	ds, err := Parse(buildWorkbook(t), FormatSpreadsheet)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	require.Equal(t, []string{"region", "__EMPTY", "sales", "sales_1"}, ds.Row(0).Keys())
	require.Equal(t, StringValue("north"), ds.Row(0).Get("region"))
	require.Equal(t, NumberValue(120), ds.Row(0).Get("sales"))
	require.Equal(t, NumberValue(7), ds.Row(0).Get("sales_1"))

	// empty cells are left off the record
	require.False(t, ds.Row(1).Has("__EMPTY"))
	require.Equal(t, NumberValue(95.5), ds.Row(1).Get("sales"))
}

func TestParseSpreadsheet_TableBelowFirstRow(t *testing.T) {
	for _, origin := range []string{"A2", "B3"} {
		t.Run(origin, func(t *testing.T) {
			col, row, err := excelize.CellNameToCoordinates(origin)
			require.NoError(t, err)
			cell := func(dc, dr int) string {
				name, err := excelize.CoordinatesToCellName(col+dc, row+dr)
				require.NoError(t, err)
				return name
			}

			f := excelize.NewFile()
			require.NoError(t, f.SetSheetRow("Sheet1", cell(0, 0), &[]any{"name", "score"}))
			require.NoError(t, f.SetSheetRow("Sheet1", cell(0, 1), &[]any{"ann", 4}))
			require.NoError(t, f.SetSheetRow("Sheet1", cell(0, 2), &[]any{"bob", 7.5}))
			buf, err := f.WriteToBuffer()
			require.NoError(t, err)
			require.NoError(t, f.Close())

			ds, err := Parse(buf.Bytes(), FormatSpreadsheet)
			require.NoError(t, err)
			require.Equal(t, 2, ds.Len())
			require.Equal(t, []string{"name", "score"}, Columns(ds))
			require.Equal(t, StringValue("ann"), ds.Row(0).Get("name"))
			require.Equal(t, NumberValue(7.5), ds.Row(1).Get("score"))
		})
	}
}

func TestParseSpreadsheet_BlankSheet(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ds, err := Parse(buf.Bytes(), FormatSpreadsheet)
	require.NoError(t, err)
	require.Zero(t, ds.Len())
}

func TestParseSpreadsheet_KeepsCellTypes(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"zip", "count", "active"}))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "02134"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 12))
	require.NoError(t, f.SetCellBool("Sheet1", "C2", true))
	require.NoError(t, f.SetCellStr("Sheet1", "A3", "7"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 2.5))
	require.NoError(t, f.SetCellBool("Sheet1", "C3", false))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ds, err := Parse(buf.Bytes(), FormatSpreadsheet)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, StringValue("02134"), ds.Row(0).Get("zip"))
	require.Equal(t, NumberValue(12), ds.Row(0).Get("count"))
	require.Equal(t, StringValue("true"), ds.Row(0).Get("active"))
	require.Equal(t, StringValue("7"), ds.Row(1).Get("zip"))
	require.Equal(t, NumberValue(2.5), ds.Row(1).Get("count"))
	require.Equal(t, StringValue("false"), ds.Row(1).Get("active"))
}

func TestParseSpreadsheet_Corrupt(t *testing.T) {
	_, err := Parse([]byte("not a zip"), FormatSpreadsheet)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrParse))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "scores.csv")
	require.NoError(t, os.WriteFile(p, []byte("name,score\nann,3"), 0o644))

	ds, err := ParseFile(p)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	_, err = ParseFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
}

func TestDataset_MarshalJSON(t *testing.T) {
	ds, err := Parse([]byte("b,a\n1,x\n2,"), FormatCSV)
	require.NoError(t, err)
	raw, err := ds.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `[{"b":1,"a":"x"},{"b":2,"a":""}]`, string(raw))
}

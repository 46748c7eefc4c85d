package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// Format is the declared format of uploaded content.
type Format string

const (
	FormatUnknown     Format = ""
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
	FormatJSON        Format = "json"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("dataset: parse failed")

// ErrUnsupportedFormat is wrapped inside a ParseError when the file extension is
// not recognized. Callers see a ParseError either way; the two cases are not
// distinguished at the interface.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseError reports content that could not be interpreted under its declared
// format. No Dataset is produced alongside it.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == FormatUnknown {
		return fmt.Sprintf("dataset: parse: %v", e.Err)
	}
	return fmt.Sprintf("dataset: parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// FormatFromName maps a file name to its declared format by extension.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xls":
		return FormatSpreadsheet
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// ParseFile reads path and parses it according to its extension.
func ParseFile(path string) (Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset: read file: %w", err)
	}
	return Parse(content, FormatFromName(path))
}

// Parse converts raw content into a Dataset under the declared format.
func Parse(content []byte, format Format) (Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = parseCSV(string(content))
	case FormatSpreadsheet:
		ds, err = parseSpreadsheet(content)
	case FormatJSON:
		ds, err = parseJSON(content)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return Dataset{}, &ParseError{Format: format, Err: err}
	}
	return ds, nil
}

// decimalLiteral is the text a browser's isNaN/parseFloat pair reads as a
// number: a signed decimal with optional exponent, or Infinity. Go-only forms
// such as "inf", hex floats and digit separators stay text.
var decimalLiteral = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)$`)

// coerce stores a trimmed cell as a number when it is a decimal literal,
// otherwise as the trimmed string. Out-of-range literals become ±Inf.
func coerce(raw string) Value {
	s := strings.TrimSpace(raw)
	if !decimalLiteral.MatchString(s) {
		return StringValue(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return StringValue(s)
	}
	return NumberValue(f)
}

// parseCSV splits on newlines and commas only. Quoted fields containing a comma
// are not supported and shift the remaining columns.
func parseCSV(content string) (Dataset, error) {
	lines := strings.Split(content, "\n")
	rawHeaders := strings.Split(lines[0], ",")
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		rec := NewRecord()
		for j, h := range headers {
			if j >= len(fields) {
				rec.Set(h, Value{})
				continue
			}
			rec.Set(h, coerce(fields[j]))
		}
		records = append(records, rec)
	}
	return New(records), nil
}

// parseSpreadsheet reads the first sheet of a workbook into records keyed by
// its header row. The table starts at the first non-blank row and column.
// Empty cells are left off the record; text cells stay text.
func parseSpreadsheet(content []byte) (Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Dataset{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	top, left := usedOrigin(rows)
	if top < 0 {
		return New(nil), nil
	}

	headers := sheetHeaders(rows[top][left:])
	records := make([]Record, 0, len(rows)-top-1)
	for r := top + 1; r < len(rows); r++ {
		rec := NewRecord()
		for j := left; j < len(rows[r]); j++ {
			cell := rows[r][j]
			if j-left >= len(headers) || cell == "" {
				continue
			}
			v, err := sheetValue(f, sheet, j, r, cell)
			if err != nil {
				return Dataset{}, fmt.Errorf("read sheet %q: %w", sheet, err)
			}
			rec.Set(headers[j-left], v)
		}
		if rec.Len() == 0 {
			continue
		}
		records = append(records, rec)
	}
	return New(records), nil
}

// usedOrigin returns the zero-based row and column of the first non-blank
// cell, or -1, -1 for a blank sheet.
func usedOrigin(rows [][]string) (top, left int) {
	top, left = -1, -1
	for r, row := range rows {
		for j, cell := range row {
			if cell == "" {
				continue
			}
			if top < 0 {
				top = r
			}
			if left < 0 || j < left {
				left = j
			}
			break
		}
	}
	return top, left
}

// sheetValue keeps the stored cell type: numeric cells become numbers,
// booleans the strings "true"/"false", everything else text as written.
func sheetValue(f *excelize.File, sheet string, col, row int, raw string) (Value, error) {
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Value{}, err
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return Value{}, err
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return NumberValue(n), nil
		}
		return StringValue(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return StringValue("true"), nil
		}
		return StringValue("false"), nil
	default:
		return StringValue(raw), nil
	}
}

// sheetHeaders names blank header cells __EMPTY, __EMPTY_1, ... and suffixes
// repeated names with _1, _2, ... so every column key is unique.
func sheetHeaders(row []string) []string {
	seen := map[string]int{}
	out := make([]string, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = "__EMPTY"
		}
		base := name
		n, dup := seen[base]
		for dup {
			n++
			name = fmt.Sprintf("%s_%d", base, n)
			_, dup = seen[name]
		}
		seen[base] = n
		if name != base {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// parseJSON expects an array of flat objects. Members keep document order.
// Booleans become the strings "true"/"false"; nested values keep their raw JSON.
func parseJSON(content []byte) (Dataset, error) {
	if !gjson.ValidBytes(content) {
		return Dataset{}, errors.New("invalid json")
	}
	root := gjson.ParseBytes(content)
	if !root.IsArray() {
		return Dataset{}, errors.New("json content must be an array of objects")
	}

	var (
		records []Record
		elemErr error
	)
	root.ForEach(func(_, elem gjson.Result) bool {
		if !elem.IsObject() {
			elemErr = fmt.Errorf("element %d is not an object", len(records))
			return false
		}
		rec := NewRecord()
		elem.ForEach(func(key, val gjson.Result) bool {
			rec.Set(key.String(), jsonValue(val))
			return true
		})
		records = append(records, rec)
		return true
	})
	if elemErr != nil {
		return Dataset{}, elemErr
	}
	return New(records), nil
}

func jsonValue(r gjson.Result) Value {
	switch r.Type {
	case gjson.Number:
		return NumberValue(r.Num)
	case gjson.String:
		return StringValue(r.Str)
	case gjson.Null:
		return NullValue()
	case gjson.True, gjson.False:
		return StringValue(r.Raw)
	default:
		return StringValue(r.Raw)
	}
}

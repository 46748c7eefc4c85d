package dataset

import (
	"encoding/json"
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	// Absent marks a key with no value: a short CSV line or a column the record lacks.
	Absent Kind = iota
	Null
	Number
	String
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "absent"
	}
}

// Value is a single cell: a number, a string, null, or absent.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// NumberValue wraps a float.
func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// NullValue is an explicit null.
func NullValue() Value { return Value{Kind: Null} }

// Float returns the numeric value, or NaN for anything that is not a number.
// Non-numeric cells flow into numeric charts as NaN rather than being filtered.
func (v Value) Float() float64 {
	if v.Kind == Number {
		return v.Num
	}
	return math.NaN()
}

// IsNumber reports whether v holds a finite or infinite number (NaN included).
func (v Value) IsNumber() bool { return v.Kind == Number }

// String renders the value the way a browser stringifies it, which is also the
// key used when values are counted.
func (v Value) String() string {
	switch v.Kind {
	case Number:
		return FormatNumber(v.Num)
	case String:
		return v.Str
	case Null:
		return "null"
	default:
		return "undefined"
	}
}

// MarshalJSON encodes numbers as JSON numbers; NaN, infinities, null and
// absent all encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.Num, 'g', -1, 64)), nil
	case String:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// FormatNumber formats a float like JavaScript's Number#toString for the
// common range: integers without a fraction, shortest round-trip otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Record maps column names to values, preserving the order keys were added.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: orderedmap.New[string, Value]()}
}

// Set assigns a value; re-setting an existing key keeps its original position.
func (r Record) Set(key string, v Value) {
	r.fields.Set(key, v)
}

// Get returns the value for key, or an Absent value when the key is missing.
func (r Record) Get(key string) Value {
	if r.fields == nil {
		return Value{}
	}
	v, _ := r.fields.Get(key)
	return v
}

// Has reports whether key is present on the record.
func (r Record) Has(key string) bool {
	if r.fields == nil {
		return false
	}
	_, ok := r.fields.Get(key)
	return ok
}

// Keys lists the record's keys in insertion order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for p := r.fields.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Len returns the number of keys.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// MarshalJSON encodes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// Dataset is an ordered, immutable sequence of records. Row order is the input
// order and is never changed by any component.
type Dataset struct {
	records []Record
}

// New builds a Dataset from records. The slice is copied.
func New(records []Record) Dataset {
	cp := make([]Record, len(records))
	copy(cp, records)
	return Dataset{records: cp}
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.records) }

// Row returns the record at index i.
func (d Dataset) Row(i int) Record { return d.records[i] }

// Records returns a copy of the row slice.
func (d Dataset) Records() []Record {
	cp := make([]Record, len(d.records))
	copy(cp, d.records)
	return cp
}

// Column reads one column across every row, in row order. Rows lacking the
// column yield Absent values.
func (d Dataset) Column(name string) []Value {
	out := make([]Value, len(d.records))
	for i, r := range d.records {
		out[i] = r.Get(name)
	}
	return out
}

// Floats reads one column as floats; non-numeric cells become NaN.
func (d Dataset) Floats(name string) []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = r.Get(name).Float()
	}
	return out
}

// MarshalJSON encodes the dataset as a JSON array of objects.
func (d Dataset) MarshalJSON() ([]byte, error) {
	if d.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.records)
}

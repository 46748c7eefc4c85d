package validation

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vinodismyname/mcpviz/internal/charts"
	"github.com/vinodismyname/mcpviz/pkg/pagination"
)

var (
	v    *validator.Validate
	once sync.Once
)

var dataExts = []string{".csv", ".json", ".xlsx", ".xls"}

func hasExt(s string, exts ...string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range exts {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// input file path must have a parseable extension
		_ = v.RegisterValidation("data_ext", func(fl validator.FieldLevel) bool {
			return hasExt(fl.Field().String(), dataExts...)
		})
		_ = v.RegisterValidation("pdf_ext", func(fl validator.FieldLevel) bool {
			return hasExt(fl.Field().String(), ".pdf")
		})
		_ = v.RegisterValidation("chart_type", func(fl validator.FieldLevel) bool {
			_, err := charts.ParseType(fl.Field().String())
			return err == nil
		})
		// cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // use omitempty with this tag
			}
			if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
				return false
			}
			_, err := pagination.DecodeCursor(s)
			return err == nil
		})
	})
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	err := Validator().Struct(s)
	if err == nil {
		return ""
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "VALIDATION: invalid inputs"
	}
	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("VALIDATION: %s is required", field)
	case "data_ext":
		// unreadable formats are parse failures, not input mistakes
		return fmt.Sprintf("PARSE_FAILED: unsupported format %q; use .csv, .json, .xlsx or .xls", filepath.Ext(fe.Value().(string)))
	case "pdf_ext":
		return "VALIDATION: output path must end in .pdf"
	case "chart_type":
		names := make([]string, 0, len(charts.Types()))
		for _, t := range charts.Types() {
			names = append(names, string(t))
		}
		return fmt.Sprintf("VALIDATION: unknown chart type %q; use one of %s", fe.Value(), strings.Join(names, ", "))
	case "cursor":
		return "CURSOR_INVALID: failed to decode cursor; restart pagination without a cursor"
	case "unique":
		return fmt.Sprintf("VALIDATION: %s must not repeat entries", field)
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("VALIDATION: invalid %s", field)
}

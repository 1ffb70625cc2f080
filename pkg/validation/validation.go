package validation

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vinodismyname/mcprealty/pkg/pagination"
)

var (
	v    *validator.Validate
	once sync.Once
)

// datasetExts lists the file extensions accepted as dataset sources.
var datasetExts = map[string]bool{
	".xlsx": true, ".xlsm": true, ".csv": true, ".tsv": true,
	".sqlite": true, ".sqlite3": true, ".db": true,
}

// IsDatasetSource reports whether s names a supported dataset file or a postgres URL.
func IsDatasetSource(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") {
		return true
	}
	return datasetExts[filepath.Ext(s)]
}

// IsUploadName reports whether name is a plausible upload file name with a file extension
// (not a database URL).
func IsUploadName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "://") {
		return false
	}
	return datasetExts[strings.ToLower(filepath.Ext(name))]
}

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Report fields by their JSON names so messages match tool schemas.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Custom: dataset source must be a supported file or postgres URL
		_ = v.RegisterValidation("dataset_source", func(fl validator.FieldLevel) bool {
			return IsDatasetSource(fl.Field().String())
		})
		// Custom: upload names carry a supported extension
		_ = v.RegisterValidation("upload_name", func(fl validator.FieldLevel) bool {
			return IsUploadName(fl.Field().String())
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
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
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "required_without":
				return fmt.Sprintf("VALIDATION: %s is required (or supply cursor)", field)
			case "dataset_source":
				return "VALIDATION: dataset must be .xlsx, .xlsm, .csv, .tsv, .sqlite, .sqlite3, .db or a postgres:// URL"
			case "upload_name":
				return "VALIDATION: file name must end in .xlsx, .xlsm, .csv, .tsv, .sqlite, .sqlite3 or .db"
			case "cursor":
				return "CURSOR_INVALID: failed to decode cursor; restart pagination from the first page"
			case "base64":
				return fmt.Sprintf("VALIDATION: %s must be standard base64", field)
			case "min", "max", "gte", "lte":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}

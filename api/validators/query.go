package validators

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// ParseQueryInt reads an integer in [min, max]; absent means defaultVal.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryBool reads an optional filter flag. Absent or malformed values are
// nil so the backend applies its own default.
func ParseQueryBool(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(queryValue(r, key))
	if err != nil {
		return nil
	}
	return &v
}

// QueryString reads a trimmed free-text parameter such as a search term.
func QueryString(r *http.Request, key string, maxRunes int) (string, error) {
	raw := queryValue(r, key)
	if maxRunes > 0 && utf8.RuneCountInString(raw) > maxRunes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": key, "max": maxRunes})
	}
	return raw, nil
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"
)

var errInvalidPage = errors.New("invalid_page")

// parsePageNumber treats an empty value as the first page.
func parsePageNumber(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 1, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 1 {
		return 0, errInvalidPage
	}
	return parsed, nil
}

// decodeLooseJSON flattens a JSON object into text values. Strings pass
// through. Numbers keep their literal form only for numericFields; every other
// non-string value, null included, becomes empty.
func decodeLooseJSON(body io.Reader, numericFields ...string) (map[string]string, error) {
	if body == nil {
		return map[string]string{}, nil
	}
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case json.Number:
			if slices.Contains(numericFields, key) {
				fields[key] = v.String()
			} else {
				fields[key] = ""
			}
		default:
			fields[key] = ""
		}
	}
	return fields, nil
}

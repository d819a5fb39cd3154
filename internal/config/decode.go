package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stefal/pyruse-go/internal/domain"
)

// extOf is the lower-cased file extension used to pick a format.
func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// decodeGeneric decodes the whole document into plain Go values (maps,
// slices, strings, bools, and json.Number for JSON numbers / float64|int
// for YAML numbers), used for the float-rejection and unknown-top-level-key
// checks. It does not preserve map ordering; parseChains (chains.go) does
// that separately for the "actions" mapping specifically.
func decodeGeneric(path string, raw []byte) (any, error) {
	switch extOf(path) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, domain.WrapError(domain.ErrConfigValue, "parse json configuration "+path, err)
		}
		return v, nil
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, domain.WrapError(domain.ErrConfigValue, "parse yaml configuration "+path, err)
		}
		return v, nil
	default:
		return nil, domain.NewError(domain.ErrConfig, "unrecognized configuration extension for "+path)
	}
}

// rejectFloats walks a decoded document and fails configuration parsing the
// moment it finds a fractional number anywhere in the document (Open
// Question 1, SPEC_FULL.md §3.1): pyruse's record values are bool, string,
// int, time, list, or map, and counter/ban durations are always whole
// seconds, so a float can only be a typo for an int and is never silently
// truncated.
func rejectFloats(v any) error {
	switch t := v.(type) {
	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			return domain.NewError(domain.ErrConfigValue, "fractional numbers are not supported: "+t.String())
		}
	case float32, float64:
		return domain.NewError(domain.ErrConfigValue, fmt.Sprintf("fractional numbers are not supported: %v", t))
	case map[string]any:
		for _, e := range t {
			if err := rejectFloats(e); err != nil {
				return err
			}
		}
	case []any:
		for _, e := range t {
			if err := rejectFloats(e); err != nil {
				return err
			}
		}
	}
	return nil
}

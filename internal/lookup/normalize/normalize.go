// Package normalize maps arbitrary provider response shapes into the
// canonical RC record. It is the only package that sees untyped provider
// payloads; everything downstream works with models.Record.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rcgateway/internal/lookup/models"
)

// SemanticError reports a payload that parsed fine but asserts failure:
// an explicit non-valid status marker, or a bare code+message pair with
// no record-shaped keys.
type SemanticError struct {
	NotFound bool
	Code     int
	Message  string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("provider asserted failure (code %d): %s", e.Code, e.Message)
}

// FormatError reports a payload that could not be normalized at all.
// Keys carries a short diagnostic listing of the top-level and data-level
// keys actually received.
type FormatError struct {
	Keys []string
}

func (e *FormatError) Error() string {
	return "unsupported response format; keys: " + strings.Join(e.Keys, ",")
}

// Envelope keys tried when unwrapping nested responses, in order.
var envelopeKeys = []string{"data", "result", "rc"}

// Normalize converts a raw provider body into a canonical record.
//
// Returns (nil, *SemanticError) when the payload asserts failure, and
// (nil, *FormatError) when nothing record-shaped can be extracted. This is
// the contract callers rely on to distinguish "provider returned garbage"
// from "provider returned a usable record".
func Normalize(body []byte, registrationNumber string) (*models.Record, error) {
	obj, err := parseObject(body)
	if err != nil {
		return nil, &FormatError{Keys: []string{"<non-object>"}}
	}

	// Unwrap up to two envelope levels: root, root.data, root.data.data,
	// root.result, root.rc. The first level that yields a valid record wins.
	candidates := []map[string]any{obj}
	for _, key := range envelopeKeys {
		if inner, ok := childObject(obj, key); ok {
			candidates = append(candidates, inner)
			if key == "data" {
				if deeper, ok := childObject(inner, "data"); ok {
					candidates = append(candidates, deeper)
				}
			}
		}
	}

	for _, c := range candidates {
		if sem := sniffSemanticError(c); sem != nil {
			return nil, sem
		}
	}

	for _, c := range candidates {
		if rec := extractRecord(c, registrationNumber); rec != nil {
			return rec, nil
		}
	}

	return nil, &FormatError{Keys: diagnosticKeys(obj)}
}

func parseObject(body []byte) (map[string]any, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case []any:
		// Some providers wrap the single record in an array.
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj, nil
			}
		}
	}
	return nil, fmt.Errorf("not an object")
}

func childObject(obj map[string]any, key string) (map[string]any, bool) {
	inner, ok := obj[key].(map[string]any)
	return inner, ok
}

// notFoundStatuses are status markers that mean "this registration number
// does not exist", as opposed to the provider being broken.
var notFoundStatuses = map[string]bool{
	"invalid":          true,
	"id_not_found":     true,
	"not_found":        true,
	"no_record":        true,
	"no_records_found": true,
}

var validStatuses = map[string]bool{
	"valid":    true,
	"success":  true,
	"ok":       true,
	"id_found": true,
	"complete": true,
}

func sniffSemanticError(obj map[string]any) *SemanticError {
	if status, ok := obj["status"]; ok {
		switch s := status.(type) {
		case string:
			lower := strings.ToLower(strings.TrimSpace(s))
			if lower != "" && !validStatuses[lower] && !looksNumericSuccess(lower) {
				return &SemanticError{
					NotFound: notFoundStatuses[lower],
					Code:     statusCode(obj, 502),
					Message:  messageField(obj, "status "+lower),
				}
			}
		case float64:
			if code := int(s); code < 200 || code > 299 {
				return &SemanticError{
					NotFound: code == 404,
					Code:     code,
					Message:  messageField(obj, fmt.Sprintf("status %d", code)),
				}
			}
		}
	}

	if success, ok := obj["success"].(bool); ok && !success {
		return &SemanticError{
			NotFound: false,
			Code:     statusCode(obj, 502),
			Message:  messageField(obj, "provider reported failure"),
		}
	}

	// A bare code+message pair without any record-shaped keys is an error
	// document, not a record.
	_, hasCode := obj["code"]
	_, hasMessage := obj["message"]
	if hasCode && hasMessage && !hasRecordKeys(obj) {
		code := statusCode(obj, 502)
		return &SemanticError{
			NotFound: code == 404,
			Code:     code,
			Message:  messageField(obj, "provider error"),
		}
	}

	return nil
}

func looksNumericSuccess(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 200 && n <= 299
}

func statusCode(obj map[string]any, def int) int {
	for _, key := range []string{"code", "status_code", "statusCode"} {
		switch v := obj[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return def
}

func messageField(obj map[string]any, def string) string {
	for _, key := range []string{"message", "message_code", "error", "error_description"} {
		if v, ok := obj[key].(string); ok && v != "" {
			return v
		}
	}
	return def
}

func hasRecordKeys(obj map[string]any) bool {
	for _, aliases := range fieldAliases {
		for _, alias := range aliases {
			if _, ok := obj[alias]; ok {
				return true
			}
		}
	}
	for _, key := range envelopeKeys {
		if inner, ok := childObject(obj, key); ok && hasRecordKeys(inner) {
			return true
		}
	}
	return false
}

func diagnosticKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	if inner, ok := childObject(obj, "data"); ok {
		for k := range inner {
			keys = append(keys, "data."+k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 20 {
		keys = keys[:20]
	}
	return keys
}

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SettingType tells how a stored setting value is interpreted.
type SettingType string

// Setting types.
const (
	SettingString  SettingType = "string"
	SettingInteger SettingType = "integer"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// ErrInvalidSettingType is returned for an unknown SettingType.
var ErrInvalidSettingType = errors.New("invalid setting type")

// ParseSettingType maps s to a SettingType, defaulting to SettingString.
func ParseSettingType(s string) (SettingType, error) {
	switch t := SettingType(strings.TrimSpace(s)); t {
	case "":
		return SettingString, nil
	case SettingString, SettingInteger, SettingBoolean, SettingJSON:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSettingType, s)
	}
}

// Setting is a typed system setting.
type Setting struct {
	Key   string      `json:"setting_key"`
	Value any         `json:"value"`
	Type  SettingType `json:"type"`
}

// EncodeSetting renders v in the stored text form for t.
func EncodeSetting(v any, t SettingType) (string, error) {
	switch t {
	case SettingJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode json setting: %w", err)
		}
		return string(b), nil
	case SettingBoolean:
		if truthy(v) {
			return "true", nil
		}
		return "false", nil
	case SettingInteger:
		switch n := v.(type) {
		case float64:
			return strconv.FormatInt(int64(n), 10), nil
		case string:
			if _, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err != nil {
				return "", fmt.Errorf("encode integer setting: %w", err)
			}
			return strings.TrimSpace(n), nil
		default:
			return fmt.Sprint(v), nil
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
}

// DecodeSetting converts a stored value back to its typed form.
func DecodeSetting(raw string, t SettingType) (any, error) {
	switch t {
	case SettingInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode integer setting: %w", err)
		}
		return n, nil
	case SettingBoolean:
		return strings.EqualFold(strings.TrimSpace(raw), "true"), nil
	case SettingJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode json setting: %w", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true") || b == "1"
	case float64:
		return b != 0
	case int:
		return b != 0
	case nil:
		return false
	default:
		return true
	}
}

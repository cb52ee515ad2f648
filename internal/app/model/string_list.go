package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is stored as a JSON array in a text column so the same schema
// works on Postgres and SQLite.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan accepts a JSON array or, for legacy rows, a bare string.
func (s *StringList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = StringList{}
		return nil
	}
	if !strings.HasPrefix(raw, "[") {
		*s = StringList{raw}
		return nil
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return err
	}
	*s = values
	return nil
}

func (StringList) GormDataType() string {
	return "text"
}

// First returns the first element or "".
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

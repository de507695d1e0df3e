package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes is a jsonb column holding the pass-through fields of a client.
type Attributes map[string]any

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(a))
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return string(b), nil
}

func (a *Attributes) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan attributes: unsupported type %T", src)
	}

	out := make(Attributes)
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan attributes: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*a = out
	return nil
}

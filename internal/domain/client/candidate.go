package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Action string

const (
	ActionNone         Action = ""
	ActionUpdate       Action = "update"
	ActionSkip         Action = "skip"
	ActionImportAnyway Action = "import_anyway"
)

func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionUpdate, ActionSkip, ActionImportAnyway:
		return true
	default:
		return false
	}
}

// CandidateRow is one not-yet-committed record of an import batch.
type CandidateRow struct {
	RowNumber        int `validate:"gte=0"`
	Fields           KnownIdentityFields
	Attributes       Attributes
	OwnerID          string `validate:"max=64"`
	ExistingClientID string `validate:"max=64"`
	Action           Action `validate:"omitempty,oneof=update skip import_anyway"`
}

func (c CandidateRow) Identity() NormalizedIdentity {
	return NormalizeFields(c.Fields)
}

// Payload renders the row the way the caller sent it, known fields included.
func (c CandidateRow) Payload() map[string]any {
	out := make(map[string]any, len(c.Attributes)+8)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out["name"] = c.Fields.Name
	out["city"] = c.Fields.City
	out["state"] = c.Fields.State
	out["document"] = c.Fields.Document
	if c.OwnerID != "" {
		out["ownerId"] = c.OwnerID
	}
	if c.ExistingClientID != "" {
		out["existingClientId"] = c.ExistingClientID
	}
	if c.Action != ActionNone {
		out["action"] = string(c.Action)
	}
	return out
}

func (c CandidateRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Payload())
}

// UnmarshalJSON splits the identity fields and row controls from the pass-through
// attributes. A type mismatch on a known key is reported as a ShapeValidationError.
func (c *CandidateRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ShapeValidationError{Message: "row must be a JSON object"}
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	row := CandidateRow{}
	for _, key := range keys {
		value := raw[key]
		var err error
		switch key {
		case "name":
			row.Fields.Name, err = decodeString(key, value)
		case "city":
			row.Fields.City, err = decodeString(key, value)
		case "state":
			row.Fields.State, err = decodeString(key, value)
		case "document":
			row.Fields.Document, err = decodeStringOrNumber(key, value)
		case "ownerId":
			row.OwnerID, err = decodeString(key, value)
		case "existingClientId", "existingRecordId":
			var id string
			id, err = decodeString(key, value)
			if id != "" {
				row.ExistingClientID = id
			}
		case "action":
			var action string
			action, err = decodeString(key, value)
			row.Action = Action(strings.TrimSpace(action))
		case "rowNumber", "sourceRowNumber":
			var n int
			n, err = decodeRowNumber(key, value)
			if n != 0 {
				row.RowNumber = n
			}
		default:
			if row.Attributes == nil {
				row.Attributes = make(Attributes)
			}
			var v any
			dec := json.NewDecoder(bytes.NewReader(value))
			dec.UseNumber()
			if err = dec.Decode(&v); err != nil {
				err = &ShapeValidationError{Field: key, Message: "invalid JSON value"}
			}
			row.Attributes[key] = v
		}
		if err != nil {
			return err
		}
	}

	*c = row
	return nil
}

func decodeString(field string, value json.RawMessage) (string, error) {
	if isNull(value) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", &ShapeValidationError{Field: field, Message: "must be a string"}
	}
	return s, nil
}

// spreadsheets often hand documents over as numbers
func decodeStringOrNumber(field string, value json.RawMessage) (string, error) {
	if isNull(value) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		return n.String(), nil
	}
	return "", &ShapeValidationError{Field: field, Message: "must be a string or a number"}
}

func decodeRowNumber(field string, value json.RawMessage) (int, error) {
	if isNull(value) {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(value, &n); err != nil || n < 1 {
		return 0, &ShapeValidationError{Field: field, Message: fmt.Sprintf("must be a positive integer, got %s", string(value))}
	}
	return n, nil
}

func isNull(value json.RawMessage) bool {
	return len(value) == 0 || string(bytes.TrimSpace(value)) == "null"
}

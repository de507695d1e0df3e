package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidPayload = errors.New("batch must be a JSON array or an object with a rows array")

// ReadJSONRows streams a batch file: either a bare array of rows or an object
// whose "rows" (or legacy "clients") key holds the array. Each element is kept
// raw so a malformed row only fails itself later on.
func ReadJSONRows(r io.Reader, maxRows int) ([]json.RawMessage, error) {
	dec := json.NewDecoder(r)

	token, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read json start token: %w", err)
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return nil, ErrInvalidPayload
	}

	switch delim {
	case '[':
		return readArray(dec, maxRows)
	case '{':
		for dec.More() {
			keyToken, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read json key: %w", err)
			}
			key, _ := keyToken.(string)
			if key != "rows" && key != "clients" {
				var skip json.RawMessage
				if err := dec.Decode(&skip); err != nil {
					return nil, fmt.Errorf("skip %q: %w", key, err)
				}
				continue
			}

			token, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read %q start token: %w", key, err)
			}
			if d, ok := token.(json.Delim); !ok || d != '[' {
				return nil, ErrInvalidPayload
			}
			return readArray(dec, maxRows)
		}
		return nil, ErrInvalidPayload
	default:
		return nil, ErrInvalidPayload
	}
}

func readArray(dec *json.Decoder, maxRows int) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0)
	for dec.More() {
		if maxRows > 0 && len(rows) >= maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrTooManyRows, maxRows)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode row at index %d: %w", len(rows), err)
		}
		rows = append(rows, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read json end token: %w", err)
	}
	return rows, nil
}

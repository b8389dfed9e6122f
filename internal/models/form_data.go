package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// FormEntry holds the answers submitted for one form key. A single answer is
// encoded as a JSON string, several answers as a JSON array.
type FormEntry struct {
	Key    string
	Values []string
}

// FormData is an ordered mapping from form key to answers. It keeps the order
// in which keys were first submitted, also through JSON and the database.
type FormData []FormEntry

// Get returns the answers for key joined by a single space.
func (f FormData) Get(key string) string {
	for _, e := range f {
		if e.Key == key {
			return joinValues(e.Values)
		}
	}
	return ""
}

func (f FormData) Values(key string) []string {
	for _, e := range f {
		if e.Key == key {
			return e.Values
		}
	}
	return nil
}

// Add appends value to key, creating the entry at the end if needed.
func (f FormData) Add(key, value string) FormData {
	for i := range f {
		if f[i].Key == key {
			f[i].Values = append(f[i].Values, value)
			return f
		}
	}
	return append(f, FormEntry{Key: key, Values: []string{value}})
}

func joinValues(values []string) string {
	var buf bytes.Buffer
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(v)
	}
	return buf.String()
}

func (f FormData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if len(e.Values) == 1 {
			value, err = json.Marshal(e.Values[0])
		} else {
			values := e.Values
			if values == nil {
				values = []string{}
			}
			value, err = json.Marshal(values)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *FormData) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("form data: expected object")
	}

	out := FormData{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("form data: expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var single string
		if err := json.Unmarshal(raw, &single); err == nil {
			out = append(out, FormEntry{Key: key, Values: []string{single}})
			continue
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return fmt.Errorf("form data: value of %q must be a string or list of strings", key)
		}
		out = append(out, FormEntry{Key: key, Values: many})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}

// Schema describes the JSON object encoding for the OpenAPI document.
func (FormData) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:                 huma.TypeObject,
		Description:          "Submitted answers by form key; repeated keys are lists",
		AdditionalProperties: true,
	}
}

func (FormData) GormDataType() string {
	return "json"
}

func (f FormData) Value() (driver.Value, error) {
	b, err := f.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FormData) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		return f.UnmarshalJSON(v)
	case string:
		return f.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("form data: unsupported scan type %T", value)
	}
}

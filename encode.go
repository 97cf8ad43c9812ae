package finkitty

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// DecodeModel parses a model file. Unknown top-level keys are ignored so
// files written by richer editors still load.
func DecodeModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	return &m, nil
}

// EncodeModel writes a model back out with the sections in canonical order,
// indented for hand editing and diffing.
func (m *Model) EncodeModel() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Optional("name", m.Name).
		Append("triggers", nonNil(m.Triggers)).
		Append("incomes", nonNil(m.Incomes)).
		Append("expenses", nonNil(m.Expenses)).
		Append("assets", nonNil(m.Assets)).
		Append("transactions", nonNil(m.Transactions)).
		Append("settings", nonNil(m.Settings))
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// nonNil keeps empty model sections as [] rather than null on disk.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

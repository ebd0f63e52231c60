package catalog

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

const (
	// AllTypes disables the type filter of a listing.
	AllTypes = "All"

	CutoffGeneral = "general"
)

// Candidate is a single college or product shown in a listing.
type Candidate struct {
	DocID    string            `mapstructure:"-" json:"docId"`
	ID       any               `mapstructure:"id" json:"id,omitempty"`
	Name     string            `mapstructure:"name" json:"name,omitempty"`
	Title    string            `mapstructure:"title" json:"title,omitempty"`
	Type     string            `mapstructure:"type" json:"type,omitempty"`
	Category string            `mapstructure:"category" json:"category,omitempty"`
	Price    Number            `mapstructure:"price" json:"price,omitempty"`
	Cutoff   map[string]Number `mapstructure:"cutoff" json:"cutoff,omitempty"`
	// Fields keeps the whole document for display fields.
	Fields map[string]any `mapstructure:"-" json:"-"`
}

// Key identifies the candidate within one listing session.
func (c Candidate) Key() string {
	if c.DocID != "" {
		return c.DocID
	}
	if c.ID == nil {
		return ""
	}
	return NumberOf(c.ID).String()
}

// DisplayName returns the name, falling back to the title for products.
func (c Candidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Title
}

// Field returns a raw document field.
func (c Candidate) Field(name string) any {
	if c.Fields == nil {
		return nil
	}
	return c.Fields[name]
}

// FieldString returns a document field only when it holds a string.
func (c Candidate) FieldString(name string) string {
	s, _ := c.Field(name).(string)
	return s
}

// HasCutoff reports whether the candidate carries a cutoff table.
func (c Candidate) HasCutoff() bool {
	return c.Cutoff != nil
}

// FromRecord decodes a stored document into a Candidate.
// Malformed cutoff tables are dropped rather than rejected so the candidate
// still shows up in listings.
func FromRecord(docID string, data map[string]any) (Candidate, error) {
	input := make(map[string]any, len(data))
	for k, v := range data {
		input[k] = v
	}
	if _, ok := input["cutoff"].(map[string]any); !ok {
		delete(input, "cutoff")
	}

	var c Candidate
	if err := decode(input, &c); err != nil {
		return Candidate{DocID: docID, Fields: data}, fmt.Errorf("decoding document %s: %w", docID, err)
	}

	c.DocID = docID
	c.Fields = data

	return c, nil
}

// NumberHook lets mapstructure fill Number fields from any raw value.
func NumberHook() mapstructure.DecodeHookFuncType {
	numberType := reflect.TypeOf(Number{})
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != numberType {
			return data, nil
		}
		return NumberOf(data), nil
	}
}

func decode(input map[string]any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       NumberHook(),
		WeaklyTypedInput: true,
		Result:           target,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

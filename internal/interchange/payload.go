// Package interchange defines the flat wire format used to exchange
// repository state with the external code-modification collaborator.
package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicatePath is returned when two entries in a payload share a name.
var ErrDuplicatePath = errors.New("duplicate path in payload")

// Entry is one file on the wire. A nil Content is the deletion sentinel:
// "remove this file when the payload is applied".
type Entry struct {
	Name    string  `json:"name"`
	Content *string `json:"content"`
}

// Keep builds an entry carrying file content.
func Keep(name, content string) Entry {
	return Entry{Name: name, Content: &content}
}

// Remove builds an entry carrying the deletion sentinel.
func Remove(name string) Entry {
	return Entry{Name: name}
}

// Payload is the ordered list of entries exchanged with the collaborator.
// It marshals as a bare JSON array of {"name", "content"} objects.
type Payload []Entry

// Decode parses a JSON payload.
func Decode(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// Encode renders the payload as JSON.
func (p Payload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// ToMap builds a name-keyed view of the payload. Fails with
// ErrDuplicatePath when two entries share a name.
func (p Payload) ToMap() (map[string]Entry, error) {
	out := make(map[string]Entry, len(p))
	for _, e := range p {
		if _, exists := out[e.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, e.Name)
		}
		out[e.Name] = e
	}
	return out, nil
}

// FlatText concatenates the payload into **name** blocks in list order.
// The result is for human or LLM consumption only; it carries no parsing
// semantics and must not be fed back through Decode.
func (p Payload) FlatText() string {
	var b strings.Builder
	for _, e := range p {
		fmt.Fprintf(&b, "\n\n**%s**: \n", e.Name)
		if e.Content != nil {
			b.WriteString(*e.Content)
		}
	}
	return b.String()
}

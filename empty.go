package cdp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Empty is the canonical empty parameter object. It marshals to {} and
// unmarshals from any JSON object, ignoring the object's members. Anything
// that is not an object is rejected.
//
// Generated bindings use Empty for commands and events that declare no
// parameters, and for schema types declared as property-less objects.
type Empty struct{}

// MarshalJSON returns {}.
func (Empty) MarshalJSON() ([]byte, error) {
	return []byte("{}"), nil
}

// UnmarshalJSON accepts any JSON object.
func (*Empty) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("cdp: cannot unmarshal %s into empty object", preview(trimmed))
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return err
	}
	return nil
}

// preview shortens a payload for inclusion in an error message.
func preview(data []byte) []byte {
	const max = 32
	if len(data) > max {
		return append(append([]byte{}, data[:max]...), "..."...)
	}
	return data
}

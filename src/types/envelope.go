package types

import "encoding/json"

// Envelope is a parsed inbound frame: the discriminant tag plus the raw
// bytes of the whole frame, decoded lazily into a typed payload.
type Envelope struct {
	Type string
	Raw  json.RawMessage
}

// ParseEnvelope parses a raw frame into an Envelope. It returns false for
// anything that is not a JSON object with a string "type" field: such
// frames are dropped by the connection layer without error.
func ParseEnvelope(data []byte) (Envelope, bool) {
	var probe struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Envelope{}, false
	}
	if probe.Type == nil || *probe.Type == "" {
		return Envelope{}, false
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return Envelope{Type: *probe.Type, Raw: raw}, true
}

// Decode unmarshals the full frame into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Raw, v)
}

// Is reports whether the envelope carries the given tag.
func Is(e Envelope, tag string) bool {
	return e.Type == tag
}

// Property returns the named top-level field of the frame, or fallback
// when the field is absent, null, or of a different type. It never fails
// on missing keys.
func Property[T any](e Envelope, key string, fallback T) T {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Raw, &fields); err != nil {
		return fallback
	}
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return fallback
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

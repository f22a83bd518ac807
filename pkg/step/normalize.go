package step

import "encoding/json"

// Normalize prepares a value for step storage. Strings and raw messages that
// parse as JSON are stored structured so the runtime's run inspector displays
// them as data rather than escaped text; everything else passes through and
// is encoded by the executor's converter.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if parsed, ok := parseJSON([]byte(val)); ok {
			return parsed
		}
		return val
	case []byte:
		if parsed, ok := parseJSON(val); ok {
			return parsed
		}
		return string(val)
	case json.RawMessage:
		if parsed, ok := parseJSON(val); ok {
			return parsed
		}
		return string(val)
	default:
		return v
	}
}

func parseJSON(data []byte) (any, bool) {
	if !json.Valid(data) {
		return nil, false
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// Package decode converts loosely typed event payloads into structs.
package decode

import "encoding/json"

// FromMap decodes data into T by round-tripping through JSON, so T's json
// tags govern field names.
func FromMap[T any](data map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(data)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(b, &result)
	return result, err
}

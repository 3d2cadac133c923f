package models

import (
	"encoding/json"
)

//
// JSON text-column helpers
//

// DecodeStringList parses a TEXT column that holds a JSON array of strings.
// Records ingested from older exports occasionally carry malformed payloads;
// those decode to an empty list instead of failing the caller.
func DecodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	if items == nil {
		return []string{}
	}
	return items
}

// EncodeStringList serializes a string list for storage in a TEXT column.
func EncodeStringList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

package domain

import "encoding/json"

// Setting is a key/value site setting. The key doubles as the document id.
type Setting struct {
	Meta
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

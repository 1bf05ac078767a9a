package models

import "time"

// SystemKeyValue is a system-level configuration record stored in the
// internal database (API keys, runtime defaults).
type SystemKeyValue struct {
	Key      string    `json:"key" badgerhold:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}

// Package manifest writes and reads the build output consumed by the
// rendering theme: the route table, the search index, the theme data and
// one page data file per route, each as JSON and optionally as an ES module.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Info describes one build output. It is written next to the data files.
type Info struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	DocsHash   string    `json:"docs_hash"`
	ConfigHash string    `json:"config_hash"`
	Pages      int       `json:"pages"`
	Records    int       `json:"records"`
	Formats    []string  `json:"formats"`
	Duration   int64     `json:"duration_ms"`
}

// ToJSON serializes the info.
func (m *Info) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes an info document.
func FromJSON(data []byte) (*Info, error) {
	var m Info
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// InputHash identifies the inputs of the build: two outputs with equal
// input hashes were built from the same docs and site config.
func (m *Info) InputHash() string {
	sum := sha256.Sum256([]byte(m.DocsHash + "\n" + m.ConfigHash))
	return hex.EncodeToString(sum[:])
}

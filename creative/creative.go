package creative

import (
	"encoding/json"
	"time"
)

// Document is the root entity of one renderable creative. It is owned
// exclusively by the request that loaded it and is immutable once cached,
// except for the in-place defaults merge performed once at load time.
type Document struct {
	ID              string            `json:"id"`
	Name            string            `json:"name,omitempty"`
	CreatedAt       *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time        `json:"updatedAt,omitempty"`
	Styles          map[string]string `json:"styles,omitempty"`
	Pieces          []Piece           `json:"pieces,omitempty"`
	CacheExclusions []string          `json:"cacheExclusions,omitempty"`
}

// Piece is a named slot holding exactly one component. Insertion order defines
// render order. The content API only populates the SlideLayout variant today,
// but the slot accepts any component kind.
type Piece struct {
	Name string `json:"name,omitempty"`
	ElementContainer
}

// Parse deserializes a raw creative document. Field matching is
// case-insensitive, mirroring the content API's serializer.
func Parse(data json.RawMessage) (*Document, error) {
	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

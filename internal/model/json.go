package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// referenceDate is the epoch used by the legacy numeric createdAt encoding.
var referenceDate = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

type itemWire struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Type        ItemType `json:"type"`
	CreatedAt   string   `json:"createdAt"`
	Title       *string  `json:"title,omitempty"`
	IsCompleted bool     `json:"isCompleted"`
	Notes       *string  `json:"notes,omitempty"`
}

type itemDecode struct {
	ID          string          `json:"id"`
	Content     string          `json:"content"`
	Type        json.RawMessage `json:"type"`
	CreatedAt   json.RawMessage `json:"createdAt"`
	Title       *string         `json:"title"`
	IsCompleted bool            `json:"isCompleted"`
	Notes       *string         `json:"notes"`
}

type canvasWire struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Items    []Item      `json:"items"`
	Children []*Canvas   `json:"children"`
	IsFolder bool        `json:"isFolder"`
	Type     *CanvasType `json:"type,omitempty"`
	Tags     []string    `json:"tags"`
}

type canvasDecode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Items    []Item          `json:"items"`
	Children []*Canvas       `json:"children"`
	IsFolder bool            `json:"isFolder"`
	Type     json.RawMessage `json:"type"`
	Tags     []string        `json:"tags"`
}

// MarshalJSON writes the item with a plain string type and an RFC 3339 timestamp.
func (it Item) MarshalJSON() ([]byte, error) {
	w := itemWire{
		ID:          it.ID,
		Content:     it.Content,
		Type:        it.Type,
		IsCompleted: it.IsCompleted,
		Title:       it.Title,
		Notes:       it.Notes,
	}
	if !it.CreatedAt.IsZero() {
		w.CreatedAt = it.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes an item tolerantly. An unrecognised type is left
// empty so the caller can derive it from the content, and an unparseable
// createdAt decodes to the zero time.
func (it *Item) UnmarshalJSON(data []byte) error {
	var d itemDecode
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	createdAt, err := decodeTimestamp(d.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	*it = Item{
		ID:          d.ID,
		Content:     d.Content,
		Type:        decodeItemType(d.Type),
		CreatedAt:   createdAt,
		Title:       d.Title,
		IsCompleted: d.IsCompleted,
		Notes:       d.Notes,
	}
	return nil
}

// MarshalJSON always writes items, children and tags as arrays.
func (c *Canvas) MarshalJSON() ([]byte, error) {
	w := canvasWire{
		ID:       c.ID,
		Name:     c.Name,
		Items:    c.Items,
		Children: c.Children,
		IsFolder: c.IsFolder,
		Type:     c.Type,
		Tags:     c.Tags,
	}
	if w.Items == nil {
		w.Items = []Item{}
	}
	if w.Children == nil {
		w.Children = []*Canvas{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a canvas written by any schema revision. Fields added
// over time (children, isFolder, type, tags) default when missing.
func (c *Canvas) UnmarshalJSON(data []byte) error {
	var d canvasDecode
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	*c = Canvas{
		ID:       d.ID,
		Name:     d.Name,
		Items:    d.Items,
		Children: d.Children,
		IsFolder: d.IsFolder,
		Type:     decodeCanvasType(d.Type),
		Tags:     d.Tags,
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	if c.Children == nil {
		c.Children = []*Canvas{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return nil
}

// EncodeCanvases serializes the root canvas list as one JSON document.
func EncodeCanvases(canvases []*Canvas) ([]byte, error) {
	if canvases == nil {
		canvases = []*Canvas{}
	}
	data, err := json.Marshal(canvases)
	if err != nil {
		return nil, fmt.Errorf("encoding canvases: %w", err)
	}
	return data, nil
}

// DecodeCanvases parses a document produced by EncodeCanvases or by an older
// schema. An empty document decodes to no canvases.
func DecodeCanvases(data []byte) ([]*Canvas, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var canvases []*Canvas
	if err := json.Unmarshal(data, &canvases); err != nil {
		return nil, fmt.Errorf("decoding canvases: %w", err)
	}
	out := canvases[:0]
	for _, c := range canvases {
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// decodeItemType accepts "link" and the keyed-object form {"link":{}}.
func decodeItemType(raw json.RawMessage) ItemType {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		if t := ItemType(s); t.Valid() {
			return t
		}
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil || len(m) != 1 {
			return ""
		}
		for k := range m {
			if t := ItemType(k); t.Valid() {
				return t
			}
		}
	}
	return ""
}

func decodeCanvasType(raw json.RawMessage) *CanvasType {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return ParseCanvasType(s)
}

// decodeTimestamp accepts an RFC 3339 string or legacy seconds since referenceDate.
func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("parsing createdAt: %w", err)
		}
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing createdAt: %w", err)
		}
		return t, nil
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("parsing createdAt: %w", err)
	}
	return referenceDate.Add(time.Duration(secs * float64(time.Second))).UTC(), nil
}

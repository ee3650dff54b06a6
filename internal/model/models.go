package model

import "time"

// ItemType is the shape of an item's content. It is always derived from the
// content and never set independently.
type ItemType string

const (
	ItemText ItemType = "text"
	ItemLink ItemType = "link"
	ItemFile ItemType = "file"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemText, ItemLink, ItemFile:
		return true
	}
	return false
}

// CanvasType enables type-specific behaviour on a canvas.
type CanvasType string

const (
	CanvasTodo     CanvasType = "todo"
	CanvasArticles CanvasType = "articles"
)

// ParseCanvasType returns the canvas type for s, or nil when s is empty,
// "none", or unknown.
func ParseCanvasType(s string) *CanvasType {
	switch CanvasType(s) {
	case CanvasTodo:
		t := CanvasTodo
		return &t
	case CanvasArticles:
		t := CanvasArticles
		return &t
	}
	return nil
}

// DisplayName returns the human-facing label of the canvas type.
func (t CanvasType) DisplayName() string {
	switch t {
	case CanvasTodo:
		return "Todo"
	case CanvasArticles:
		return "Articles"
	}
	return string(t)
}

// Item is a single captured piece of content.
type Item struct {
	ID          string    // UUID
	Content     string    // URL, path, or free text
	Type        ItemType  // derived from Content
	CreatedAt   time.Time // set once
	Title       *string   // fetched document title for links
	IsCompleted bool      // used by todo canvases
	Notes       *string
}

// Canvas is a node in the organizing tree. A folder canvas groups child
// canvases; any canvas may hold children.
type Canvas struct {
	ID       string // UUID, unique across the whole tree
	Name     string
	Items    []Item
	Children []*Canvas
	IsFolder bool
	Type     *CanvasType
	Tags     []string
}

// Clone returns a deep copy of the canvas and its subtree.
func (c *Canvas) Clone() *Canvas {
	if c == nil {
		return nil
	}
	out := &Canvas{
		ID:       c.ID,
		Name:     c.Name,
		IsFolder: c.IsFolder,
		Items:    make([]Item, len(c.Items)),
		Children: make([]*Canvas, 0, len(c.Children)),
		Tags:     append([]string{}, c.Tags...),
	}
	for i, it := range c.Items {
		out.Items[i] = it.Clone()
	}
	for _, child := range c.Children {
		out.Children = append(out.Children, child.Clone())
	}
	if c.Type != nil {
		t := *c.Type
		out.Type = &t
	}
	return out
}

// HasTag reports whether the canvas carries tag.
func (c *Canvas) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy of the item that shares no pointers with it.
func (it Item) Clone() Item {
	out := it
	if it.Title != nil {
		s := *it.Title
		out.Title = &s
	}
	if it.Notes != nil {
		s := *it.Notes
		out.Notes = &s
	}
	return out
}

// Operation is one mutation recorded in the journal.
type Operation struct {
	ID        int64
	Operation string
	CanvasID  string
	ItemID    string
	Detail    string
	CreatedAt time.Time
}

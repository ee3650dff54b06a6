package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestEncodeDecode_RoundTrip(t *testing.T) {
	created := time.Date(2025, 10, 31, 9, 15, 30, 123456789, time.UTC)
	todo := CanvasTodo

	original := []*Canvas{
		{
			ID:   "c-inbox",
			Name: "Inbox",
			Items: []Item{
				{ID: "i-1", Content: "https://example.com", Type: ItemLink, CreatedAt: created, Title: strPtr("Example Domain")},
				{ID: "i-2", Content: "buy milk", Type: ItemText, CreatedAt: created, IsCompleted: true, Notes: strPtr("2 litres")},
			},
			Tags: []string{"home"},
			Type: &todo,
		},
		{
			ID:       "c-folder",
			Name:     "Folder 1",
			IsFolder: true,
			Children: []*Canvas{
				{ID: "c-reading", Name: "Reading", Items: []Item{{ID: "i-3", Content: "~/notes.txt", Type: ItemFile, CreatedAt: created}}},
			},
		},
	}

	data, err := EncodeCanvases(original)
	if err != nil {
		t.Fatalf("EncodeCanvases() error = %v", err)
	}

	got, err := DecodeCanvases(data)
	if err != nil {
		t.Fatalf("DecodeCanvases() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len(canvases) = %d, want 2", len(got))
	}

	inbox := got[0]
	if inbox.ID != "c-inbox" || inbox.Name != "Inbox" {
		t.Errorf("inbox = %s/%s, want c-inbox/Inbox", inbox.ID, inbox.Name)
	}
	if inbox.Type == nil || *inbox.Type != CanvasTodo {
		t.Errorf("inbox.Type = %v, want todo", inbox.Type)
	}
	if len(inbox.Tags) != 1 || inbox.Tags[0] != "home" {
		t.Errorf("inbox.Tags = %v, want [home]", inbox.Tags)
	}
	if len(inbox.Items) != 2 {
		t.Fatalf("len(inbox.Items) = %d, want 2", len(inbox.Items))
	}
	first := inbox.Items[0]
	if first.ID != "i-1" || first.Type != ItemLink || !first.CreatedAt.Equal(created) {
		t.Errorf("first item = %+v", first)
	}
	if first.Title == nil || *first.Title != "Example Domain" {
		t.Errorf("first.Title = %v, want Example Domain", first.Title)
	}
	second := inbox.Items[1]
	if !second.IsCompleted || second.Notes == nil || *second.Notes != "2 litres" {
		t.Errorf("second item = %+v", second)
	}

	folder := got[1]
	if !folder.IsFolder || folder.Type != nil {
		t.Errorf("folder = %+v, want folder without type", folder)
	}
	if len(folder.Children) != 1 || folder.Children[0].ID != "c-reading" {
		t.Fatalf("folder.Children = %+v", folder.Children)
	}
	if folder.Children[0].Items[0].Type != ItemFile {
		t.Errorf("nested item type = %q, want file", folder.Children[0].Items[0].Type)
	}
}

func TestDecodeCanvases_OlderSchema(t *testing.T) {
	doc := `[{"id":"c-1","name":"Inbox","items":[{"id":"i-1","content":"hello","type":{"text":{}},"createdAt":783000000}]}]`

	got, err := DecodeCanvases([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeCanvases() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(canvases) = %d, want 1", len(got))
	}

	c := got[0]
	if c.Children == nil || len(c.Children) != 0 {
		t.Errorf("Children = %v, want empty non-nil", c.Children)
	}
	if c.IsFolder {
		t.Error("IsFolder = true, want false")
	}
	if c.Type != nil {
		t.Errorf("Type = %v, want nil", *c.Type)
	}
	if c.Tags == nil || len(c.Tags) != 0 {
		t.Errorf("Tags = %v, want empty non-nil", c.Tags)
	}

	it := c.Items[0]
	if it.Type != ItemText {
		t.Errorf("item.Type = %q, want text", it.Type)
	}
	wantCreated := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)
	if !it.CreatedAt.Equal(wantCreated) {
		t.Errorf("item.CreatedAt = %v, want %v", it.CreatedAt, wantCreated)
	}
	if it.Title != nil || it.Notes != nil || it.IsCompleted {
		t.Errorf("item optional fields not defaulted: %+v", it)
	}
}

func TestDecodeCanvases_TolerantFields(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantType *CanvasType
		itemType ItemType
	}{
		{
			name:     "unknown canvas type",
			doc:      `[{"id":"c","name":"n","items":[],"type":"kanban"}]`,
			wantType: nil,
		},
		{
			name:     "canvas type articles",
			doc:      `[{"id":"c","name":"n","items":[],"type":"articles"}]`,
			wantType: ParseCanvasType("articles"),
		},
		{
			name:     "unknown item type left for derivation",
			doc:      `[{"id":"c","name":"n","items":[{"id":"i","content":"x","type":"video"}]}]`,
			itemType: "",
		},
		{
			name:     "keyed item type",
			doc:      `[{"id":"c","name":"n","items":[{"id":"i","content":"x","type":{"link":{}}}]}]`,
			itemType: ItemLink,
		},
		{
			name:     "missing items",
			doc:      `[{"id":"c","name":"n"}]`,
			wantType: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCanvases([]byte(tt.doc))
			if err != nil {
				t.Fatalf("DecodeCanvases() error = %v", err)
			}
			c := got[0]
			if (c.Type == nil) != (tt.wantType == nil) {
				t.Fatalf("Type = %v, want %v", c.Type, tt.wantType)
			}
			if c.Type != nil && *c.Type != *tt.wantType {
				t.Errorf("Type = %q, want %q", *c.Type, *tt.wantType)
			}
			if len(c.Items) > 0 && c.Items[0].Type != tt.itemType {
				t.Errorf("item.Type = %q, want %q", c.Items[0].Type, tt.itemType)
			}
		})
	}
}

func TestDecodeCanvases_BadCreatedAt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"non rfc3339 string", `"2024-01-01 10:00"`},
		{"boolean", `true`},
		{"object", `{"t":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[{"id":"c","name":"n","items":[{"id":"i","content":"x","type":"text","createdAt":` + tt.raw + `}]}]`
			got, err := DecodeCanvases([]byte(doc))
			if err != nil {
				t.Fatalf("DecodeCanvases() error = %v", err)
			}
			if len(got) != 1 || len(got[0].Items) != 1 {
				t.Fatalf("DecodeCanvases() = %+v, want one canvas with one item", got)
			}
			if it := got[0].Items[0]; it.ID != "i" || !it.CreatedAt.IsZero() {
				t.Errorf("item = %+v, want id i with zero CreatedAt", it)
			}
		})
	}
}

func TestDecodeCanvases_EmptyAndInvalid(t *testing.T) {
	got, err := DecodeCanvases([]byte("  \n"))
	if err != nil {
		t.Fatalf("DecodeCanvases(empty) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("DecodeCanvases(empty) = %v, want none", got)
	}

	if _, err := DecodeCanvases([]byte("{not json")); err == nil {
		t.Error("DecodeCanvases(invalid) expected error")
	}
}

func TestCanvas_MarshalJSON_WritesArrays(t *testing.T) {
	data, err := json.Marshal(&Canvas{ID: "c", Name: "n"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"items":[]`, `"children":[]`, `"tags":[]`, `"isFolder":false`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded canvas %s missing %s", s, want)
		}
	}
	if strings.Contains(s, `"type"`) {
		t.Errorf("encoded canvas %s should omit nil type", s)
	}
}

func TestCanvas_Clone_IsDeep(t *testing.T) {
	todo := CanvasTodo
	c := &Canvas{
		ID:       "c",
		Items:    []Item{{ID: "i", Title: strPtr("t")}},
		Children: []*Canvas{{ID: "child"}},
		Tags:     []string{"a"},
		Type:     &todo,
	}

	cp := c.Clone()
	*cp.Items[0].Title = "changed"
	cp.Children[0].Name = "changed"
	cp.Tags[0] = "b"
	*cp.Type = CanvasArticles

	if *c.Items[0].Title != "t" {
		t.Error("Clone shares item title")
	}
	if c.Children[0].Name != "" {
		t.Error("Clone shares children")
	}
	if c.Tags[0] != "a" {
		t.Error("Clone shares tags")
	}
	if *c.Type != CanvasTodo {
		t.Error("Clone shares type")
	}
}

package dump

import (
	"fmt"
	"strings"
)

const canvasPayloadPrefix = "CANVAS:"

// PayloadKind distinguishes what is being dragged.
type PayloadKind int

const (
	PayloadItem PayloadKind = iota + 1
	PayloadCanvas
)

// Payload is a decoded drag tag.
type Payload struct {
	Kind     PayloadKind
	ItemID   string // set for PayloadItem
	CanvasID string // source canvas for items, the dragged canvas for canvases
}

// ItemPayload encodes a dragged item as "<itemId>|<sourceCanvasId>".
func ItemPayload(itemID, canvasID string) string {
	return itemID + "|" + canvasID
}

// CanvasPayload encodes a dragged canvas as "CANVAS:<canvasId>".
func CanvasPayload(canvasID string) string {
	return canvasPayloadPrefix + canvasID
}

// ParsePayload decodes a drag tag produced by ItemPayload or CanvasPayload.
func ParsePayload(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	if id, ok := strings.CutPrefix(s, canvasPayloadPrefix); ok {
		if id == "" {
			return Payload{}, fmt.Errorf("canvas payload has no id: %q", s)
		}
		return Payload{Kind: PayloadCanvas, CanvasID: id}, nil
	}

	parts := strings.Split(s, "|")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Payload{}, fmt.Errorf("malformed drag payload: %q", s)
	}
	return Payload{Kind: PayloadItem, ItemID: parts[0], CanvasID: parts[1]}, nil
}

// Drop applies a drag payload to a drop target. targetID is the canvas or
// folder under the pointer, or "" for the root list. Item payloads move the
// item onto the target canvas; canvas payloads re-parent the canvas into the
// target folder, or to the root when targetID is empty.
func (s *Store) Drop(payload string, targetID string) {
	p, err := ParsePayload(payload)
	if err != nil {
		s.logger.Warn("ignoring drop", "error", err)
		return
	}

	switch p.Kind {
	case PayloadItem:
		if targetID == "" {
			s.logger.Debug("item dropped on root, ignoring", "item", p.ItemID)
			return
		}
		s.MoveItem(p.ItemID, p.CanvasID, targetID)
	case PayloadCanvas:
		if targetID == "" {
			s.MoveCanvasToRoot(p.CanvasID)
			return
		}
		if target := s.FindCanvas(targetID); target == nil || !target.IsFolder {
			s.logger.Warn("canvas dropped on a non-folder, ignoring", "canvas", p.CanvasID, "target", targetID)
			return
		}
		s.AddCanvasToExistingFolder(p.CanvasID, targetID)
	}
}

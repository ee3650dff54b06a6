package dump

import (
	"slices"

	"dump-go/internal/model"
)

// AddItem inserts item at the front of a canvas. An empty canvasID targets
// the first root canvas. The item's type is derived from its content; ID and
// CreatedAt are assigned when empty. Returns the item ID, or "" when nothing
// was added (missing canvas, or an ID that already exists in the tree).
func (s *Store) AddItem(item model.Item, canvasID string) string {
	if canvasID == "" {
		if len(s.roots) == 0 {
			return ""
		}
		canvasID = s.roots[0]
	}
	n, ok := s.nodes[canvasID]
	if !ok {
		s.logger.Debug("add item: canvas not found", "canvas", canvasID)
		return ""
	}

	item = item.Clone()
	if item.ID == "" {
		item.ID = s.idgen.New()
	} else if _, dup := s.itemHome[item.ID]; dup {
		s.logger.Debug("add item: id already present", "item", item.ID)
		return ""
	}
	item.Type = Classify(item.Content)
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.clock.Now()
	}

	n.canvas.Items = slices.Insert(n.canvas.Items, 0, item)
	s.itemHome[item.ID] = canvasID
	s.commit("AddItem", canvasID, item.ID, string(item.Type))
	return item.ID
}

// FindItem returns a copy of the item with the given ID and the ID of the
// canvas holding it.
func (s *Store) FindItem(itemID string) (model.Item, string, bool) {
	canvasID, ok := s.itemHome[itemID]
	if !ok {
		return model.Item{}, "", false
	}
	items := s.nodes[canvasID].canvas.Items
	i := indexOfItem(items, itemID)
	return items[i].Clone(), canvasID, true
}

// UpdateItem replaces the content of an item and re-derives its type.
func (s *Store) UpdateItem(itemID, canvasID, content string) {
	s.updateItem("UpdateItem", itemID, canvasID, func(it *model.Item) {
		it.Content = content
		it.Type = Classify(content)
	})
}

// UpdateItemTitle sets the title of an item wherever it currently lives.
// Late results from a title fetch land here after the item may have moved;
// an item that no longer exists is ignored.
func (s *Store) UpdateItemTitle(itemID string, title *string) {
	canvasID, ok := s.itemHome[itemID]
	if !ok {
		s.logger.Debug("update title: item gone", "item", itemID)
		return
	}
	s.updateItem("UpdateItemTitle", itemID, canvasID, func(it *model.Item) {
		it.Title = cloneString(title)
	})
}

// ToggleItemCompletion flips an item's completion. On todo canvases the
// items are then partitioned so incomplete items precede completed ones,
// keeping the relative order inside each group.
func (s *Store) ToggleItemCompletion(itemID, canvasID string) {
	n, i := s.locate(itemID, canvasID)
	if n == nil {
		return
	}
	n.canvas.Items[i].IsCompleted = !n.canvas.Items[i].IsCompleted

	if n.canvas.Type != nil && *n.canvas.Type == model.CanvasTodo {
		slices.SortStableFunc(n.canvas.Items, func(a, b model.Item) int {
			return completionRank(a) - completionRank(b)
		})
	}
	s.commit("ToggleItemCompletion", canvasID, itemID, "")
}

func completionRank(it model.Item) int {
	if it.IsCompleted {
		return 1
	}
	return 0
}

// UpdateItemNotes sets or, with nil, clears the notes of an item.
func (s *Store) UpdateItemNotes(itemID, canvasID string, notes *string) {
	s.updateItem("UpdateItemNotes", itemID, canvasID, func(it *model.Item) {
		it.Notes = cloneString(notes)
	})
}

// DeleteItem removes an item from a canvas.
func (s *Store) DeleteItem(itemID, canvasID string) {
	n, i := s.locate(itemID, canvasID)
	if n == nil {
		return
	}
	n.canvas.Items = slices.Delete(n.canvas.Items, i, i+1)
	delete(s.itemHome, itemID)
	s.commit("DeleteItem", canvasID, itemID, "")
}

// MoveItem removes an item from the source canvas and inserts it at the
// front of the destination. Nothing happens unless the item is in the source
// and the destination exists, so a move never drops an item.
func (s *Store) MoveItem(itemID, fromID, toID string) {
	src, i := s.locate(itemID, fromID)
	if src == nil {
		return
	}
	dst, ok := s.nodes[toID]
	if !ok {
		s.logger.Debug("move item: destination not found", "canvas", toID)
		return
	}

	item := src.canvas.Items[i]
	src.canvas.Items = slices.Delete(src.canvas.Items, i, i+1)
	dst.canvas.Items = slices.Insert(dst.canvas.Items, 0, item)
	s.itemHome[itemID] = toID
	s.commit("MoveItem", toID, itemID, fromID)
}

// ReorderItems moves the items at the given indices so they sit before the
// item originally at offset, keeping their relative order.
func (s *Store) ReorderItems(canvasID string, from []int, offset int) {
	n, ok := s.nodes[canvasID]
	if !ok {
		return
	}
	reordered, ok := moveSubset(n.canvas.Items, from, offset)
	if !ok {
		return
	}
	n.canvas.Items = reordered
	s.commit("ReorderItems", canvasID, "", "")
}

func (s *Store) updateItem(operation, itemID, canvasID string, update func(*model.Item)) {
	n, i := s.locate(itemID, canvasID)
	if n == nil {
		return
	}
	update(&n.canvas.Items[i])
	s.commit(operation, canvasID, itemID, "")
}

// locate finds itemID inside canvasID. It returns a nil node when either is missing.
func (s *Store) locate(itemID, canvasID string) (*node, int) {
	n, ok := s.nodes[canvasID]
	if !ok {
		s.logger.Debug("canvas not found", "canvas", canvasID)
		return nil, -1
	}
	i := indexOfItem(n.canvas.Items, itemID)
	if i < 0 {
		s.logger.Debug("item not found", "item", itemID, "canvas", canvasID)
		return nil, -1
	}
	return n, i
}

func indexOfItem(items []model.Item, itemID string) int {
	return slices.IndexFunc(items, func(it model.Item) bool { return it.ID == itemID })
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

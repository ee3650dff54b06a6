package dump

import (
	"iter"
	"slices"

	"dump-go/internal/model"
)

// reset rebuilds the arena from a decoded tree. Missing or duplicate canvas
// and item IDs are replaced with fresh ones, item types are re-derived where
// unknown, and duplicate tags are dropped.
func (s *Store) reset(canvases []*model.Canvas) {
	s.roots = nil
	s.nodes = make(map[string]*node)
	s.itemHome = make(map[string]string)
	for _, c := range canvases {
		if id := s.insertTree(c, ""); id != "" {
			s.roots = append(s.roots, id)
		}
	}
}

func (s *Store) insertTree(c *model.Canvas, parentID string) string {
	if c == nil {
		return ""
	}

	id := c.ID
	if _, dup := s.nodes[id]; id == "" || dup {
		id = s.idgen.New()
		s.logger.Warn("canvas id missing or duplicated, assigned new id", "canvas", c.ID, "id", id)
	}

	n := &node{
		canvas: model.Canvas{
			ID:       id,
			Name:     c.Name,
			IsFolder: c.IsFolder,
			Items:    make([]model.Item, 0, len(c.Items)),
			Tags:     make([]string, 0, len(c.Tags)),
		},
		parentID: parentID,
	}
	if c.Type != nil {
		t := *c.Type
		n.canvas.Type = &t
	}
	for _, tag := range c.Tags {
		if !slices.Contains(n.canvas.Tags, tag) {
			n.canvas.Tags = append(n.canvas.Tags, tag)
		}
	}
	for _, it := range c.Items {
		it = it.Clone()
		if _, dup := s.itemHome[it.ID]; it.ID == "" || dup {
			it.ID = s.idgen.New()
		}
		if !it.Type.Valid() {
			it.Type = Classify(it.Content)
		}
		if it.CreatedAt.IsZero() {
			s.logger.Warn("item has no valid creation time", "item", it.ID, "canvas", id)
		}
		n.canvas.Items = append(n.canvas.Items, it)
		s.itemHome[it.ID] = id
	}
	s.nodes[id] = n

	for _, child := range c.Children {
		if childID := s.insertTree(child, id); childID != "" {
			n.children = append(n.children, childID)
		}
	}
	return id
}

// newNode creates an empty canvas node under parentID without linking it
// into the parent's child list.
func (s *Store) newNode(name string, isFolder bool, parentID string) string {
	id := s.idgen.New()
	s.nodes[id] = &node{
		canvas: model.Canvas{
			ID:       id,
			Name:     name,
			IsFolder: isFolder,
			Items:    []model.Item{},
			Tags:     []string{},
		},
		parentID: parentID,
	}
	return id
}

// siblings returns the list that holds canvases under parentID.
func (s *Store) siblings(parentID string) *[]string {
	if parentID == "" {
		return &s.roots
	}
	return &s.nodes[parentID].children
}

// detach unlinks id from its parent and returns its former position.
func (s *Store) detach(id string) (parentID string, index int) {
	n := s.nodes[id]
	list := s.siblings(n.parentID)
	index = slices.Index(*list, id)
	if index >= 0 {
		*list = slices.Delete(*list, index, index+1)
	}
	return n.parentID, index
}

// attach links id under parentID at index, or at the end when index < 0.
func (s *Store) attach(id, parentID string, index int) {
	list := s.siblings(parentID)
	if index < 0 || index > len(*list) {
		index = len(*list)
	}
	*list = slices.Insert(*list, index, id)
	s.nodes[id].parentID = parentID
}

// isWithin reports whether id is ancestor itself or sits below it.
func (s *Store) isWithin(id, ancestor string) bool {
	for cur := id; cur != ""; cur = s.nodes[cur].parentID {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// removeSubtree drops id and everything below it from the arena.
func (s *Store) removeSubtree(id string) {
	n := s.nodes[id]
	for _, child := range n.children {
		s.removeSubtree(child)
	}
	for _, it := range n.canvas.Items {
		delete(s.itemHome, it.ID)
	}
	delete(s.nodes, id)
}

// build returns a deep copy of the subtree rooted at id.
func (s *Store) build(id string) *model.Canvas {
	n := s.nodes[id]
	c := n.canvas.Clone()
	c.Children = make([]*model.Canvas, 0, len(n.children))
	for _, child := range n.children {
		c.Children = append(c.Children, s.build(child))
	}
	return c
}

// walk visits ids and their descendants in depth-first pre-order until
// visit returns false.
func (s *Store) walk(ids []string, visit func(*node) bool) bool {
	for _, id := range ids {
		n, ok := s.nodes[id]
		if !ok {
			continue
		}
		if !visit(n) {
			return false
		}
		if !s.walk(n.children, visit) {
			return false
		}
	}
	return true
}

// FindCanvas returns a copy of the canvas with the given ID, or nil.
func (s *Store) FindCanvas(id string) *model.Canvas {
	if _, ok := s.nodes[id]; !ok {
		return nil
	}
	return s.build(id)
}

// ParentFolder returns a copy of the canvas that directly contains id, or
// nil when id sits at the root or does not exist.
func (s *Store) ParentFolder(id string) *model.Canvas {
	n, ok := s.nodes[id]
	if !ok || n.parentID == "" {
		return nil
	}
	return s.build(n.parentID)
}

// IsCanvasInFolder reports whether id is nested under another canvas.
func (s *Store) IsCanvasInFolder(id string) bool {
	n, ok := s.nodes[id]
	return ok && n.parentID != ""
}

// AllCanvases yields every non-folder canvas in depth-first pre-order.
// The sequence is lazy and may be ranged over more than once.
func (s *Store) AllCanvases() iter.Seq[*model.Canvas] {
	return s.flatten(func(n *node) bool { return !n.canvas.IsFolder })
}

// AllFolders yields every folder canvas in depth-first pre-order.
func (s *Store) AllFolders() iter.Seq[*model.Canvas] {
	return s.flatten(func(n *node) bool { return n.canvas.IsFolder })
}

func (s *Store) flatten(match func(*node) bool) iter.Seq[*model.Canvas] {
	return func(yield func(*model.Canvas) bool) {
		s.walk(s.roots, func(n *node) bool {
			if !match(n) {
				return true
			}
			return yield(s.build(n.canvas.ID))
		})
	}
}

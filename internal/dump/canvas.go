package dump

import (
	"fmt"
	"slices"

	"dump-go/internal/model"
)

// AddCanvas appends a new canvas at the root and selects it once the change
// notification has gone out. Returns the new canvas ID, or "" for an empty name.
func (s *Store) AddCanvas(name string) string {
	if name == "" {
		return ""
	}
	id := s.newNode(name, false, "")
	s.attach(id, "", -1)

	s.afterNotify(func() { s.Select(id) })
	s.commit("AddCanvas", id, "", name)
	return id
}

// DeleteCanvas removes a canvas from wherever it sits, together with its
// children and items. If the selection disappears it falls back to the
// first root canvas.
//
// The store does not protect the Inbox; callers refuse to delete it.
func (s *Store) DeleteCanvas(id string) {
	if _, ok := s.nodes[id]; !ok {
		s.logger.Debug("delete canvas: not found", "canvas", id)
		return
	}
	s.detach(id)
	s.removeSubtree(id)

	if _, ok := s.nodes[s.selectedID]; !ok {
		s.selectedID = ""
		if len(s.roots) > 0 {
			s.selectedID = s.roots[0]
		}
	}
	s.commit("DeleteCanvas", id, "", "")
}

// RenameCanvas sets the name of the canvas with the given ID.
func (s *Store) RenameCanvas(id, name string) {
	n, ok := s.nodes[id]
	if !ok || name == "" {
		return
	}
	n.canvas.Name = name
	s.commit("RenameCanvas", id, "", name)
}

// UpdateCanvasType sets or, with nil, clears the canvas type.
func (s *Store) UpdateCanvasType(id string, t *model.CanvasType) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	detail := "none"
	if t != nil {
		v := *t
		n.canvas.Type = &v
		detail = string(v)
	} else {
		n.canvas.Type = nil
	}
	s.commit("UpdateCanvasType", id, "", detail)
}

// AddTag adds tag to the canvas unless it is already present.
func (s *Store) AddTag(id, tag string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	if !slices.Contains(n.canvas.Tags, tag) {
		n.canvas.Tags = append(n.canvas.Tags, tag)
	}
	s.commit("AddTag", id, "", tag)
}

// RemoveTag removes every occurrence of tag from the canvas.
func (s *Store) RemoveTag(id, tag string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	n.canvas.Tags = slices.DeleteFunc(n.canvas.Tags, func(t string) bool { return t == tag })
	s.commit("RemoveTag", id, "", tag)
}

// ReorderCanvases moves the root canvases at the given indices so they sit
// before the canvas originally at offset, keeping their relative order.
func (s *Store) ReorderCanvases(from []int, offset int) {
	reordered, ok := moveSubset(s.roots, from, offset)
	if !ok {
		return
	}
	s.roots = reordered
	s.commit("ReorderCanvases", "", "", fmt.Sprintf("%v->%d", from, offset))
}

// CreateNewFolder wraps a root-level canvas in a new folder named
// "Folder N", where N is the smallest number not already used by a folder
// anywhere in the tree. The folder takes the canvas's place at the root.
// Returns the folder ID, or "" when id is not a root canvas.
func (s *Store) CreateNewFolder(id string) string {
	n, ok := s.nodes[id]
	if !ok || n.parentID != "" {
		return ""
	}

	name := s.nextFolderName()
	_, index := s.detach(id)
	folderID := s.newNode(name, true, "")
	s.attach(folderID, "", index)
	s.attach(id, folderID, -1)

	s.commit("CreateNewFolder", folderID, "", name)
	return folderID
}

func (s *Store) nextFolderName() string {
	used := make(map[string]bool)
	for _, n := range s.nodes {
		if n.canvas.IsFolder {
			used[n.canvas.Name] = true
		}
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("Folder %d", i)
		if !used[name] {
			return name
		}
	}
}

// AddCanvasToExistingFolder moves a canvas from wherever it is to the end
// of the folder's children. Moving a canvas into itself or into its own
// subtree is a no-op.
func (s *Store) AddCanvasToExistingFolder(id, folderID string) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	if _, ok := s.nodes[folderID]; !ok || s.isWithin(folderID, id) {
		s.logger.Debug("add canvas to folder: invalid target", "canvas", id, "folder", folderID)
		return
	}
	s.detach(id)
	s.attach(id, folderID, -1)
	s.commit("AddCanvasToFolder", id, "", folderID)
}

// MoveCanvasToRoot moves a canvas from wherever it is to the end of the root list.
func (s *Store) MoveCanvasToRoot(id string) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	s.detach(id)
	s.attach(id, "", -1)
	s.commit("MoveCanvasToRoot", id, "", "")
}

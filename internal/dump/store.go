package dump

import (
	"dump-go/internal/model"
)

// InboxName is the name of the default canvas seeded on first run.
const InboxName = "Inbox"

// node is one canvas in the arena. Its Children field is unused; structure
// lives in parentID and children so re-parenting never copies subtrees.
type node struct {
	canvas   model.Canvas
	parentID string // "" at root
	children []string
}

type observer struct {
	id int
	fn func(version uint64)
}

// Store is the in-memory authoritative tree of canvases and items.
//
// Every mutation runs synchronously, persists the whole document through
// Storage, records itself in the Journal and then notifies subscribers.
// Absent identifiers make an operation a silent no-op. A Store assumes a
// single mutator; use Loop to funnel mutations from other goroutines.
type Store struct {
	storage Storage
	journal Journal
	logger  Logger
	clock   Clock
	idgen   IDGenerator

	roots    []string
	nodes    map[string]*node
	itemHome map[string]string // item ID -> canvas ID

	selectedID string
	version    uint64

	observers []observer
	nextObsID int
	deferred  []func()
	notifying bool
	renotify  bool
}

// Open loads the persisted tree from storage and returns a ready Store.
// A missing, unreadable or undecodable document is treated as no prior data,
// in which case an Inbox canvas is seeded and selected.
// journal, logger, clock and idgen may be nil.
func Open(storage Storage, journal Journal, logger Logger, clock Clock, idgen IDGenerator) *Store {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}

	s := &Store{
		storage: storage,
		journal: journal,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
	s.reset(s.load())

	if len(s.roots) == 0 {
		inbox := s.newNode(InboxName, false, "")
		s.roots = append(s.roots, inbox)
		s.selectedID = inbox
		s.commit("Initialize", inbox, "", InboxName)
		return s
	}

	s.selectedID = s.roots[0]
	return s
}

func (s *Store) load() []*model.Canvas {
	if s.storage == nil {
		return nil
	}
	data, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("failed to load canvases, starting empty", "error", err)
		return nil
	}
	canvases, err := model.DecodeCanvases(data)
	if err != nil {
		s.logger.Warn("failed to decode canvases, starting empty", "error", err)
		return nil
	}
	return canvases
}

// Version returns a counter that increases after every change.
func (s *Store) Version() uint64 { return s.version }

// Subscribe registers fn to be called with the new version after every
// mutation or selection change. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(version uint64)) (cancel func()) {
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Canvases returns a deep copy of the root canvas list.
func (s *Store) Canvases() []*model.Canvas {
	out := make([]*model.Canvas, 0, len(s.roots))
	for _, id := range s.roots {
		out = append(out, s.build(id))
	}
	return out
}

// Selected returns the ID of the selected canvas, or "" when none.
func (s *Store) Selected() string { return s.selectedID }

// SelectedCanvas returns a copy of the selected canvas, or nil.
func (s *Store) SelectedCanvas() *model.Canvas {
	if s.selectedID == "" {
		return nil
	}
	return s.FindCanvas(s.selectedID)
}

// Select changes the selected canvas. Selection is not persisted.
func (s *Store) Select(canvasID string) {
	if _, ok := s.nodes[canvasID]; !ok || canvasID == s.selectedID {
		return
	}
	s.selectedID = canvasID
	s.version++
	s.notify()
}

// Replace swaps the whole tree for canvases, as when restoring a snapshot.
// The selection survives if the selected canvas still exists.
func (s *Store) Replace(canvases []*model.Canvas) {
	s.reset(canvases)
	if len(s.roots) == 0 {
		s.roots = append(s.roots, s.newNode(InboxName, false, ""))
	}
	if _, ok := s.nodes[s.selectedID]; !ok {
		s.selectedID = s.roots[0]
	}
	s.commit("Replace", "", "", "")
}

// commit persists the tree, journals the operation and notifies subscribers.
// Persistence and journal failures are logged; in-memory state stays authoritative.
func (s *Store) commit(operation, canvasID, itemID, detail string) {
	s.save()

	if s.journal != nil {
		op := &model.Operation{
			Operation: operation,
			CanvasID:  canvasID,
			ItemID:    itemID,
			Detail:    detail,
			CreatedAt: s.clock.Now(),
		}
		if err := s.journal.Record(op); err != nil {
			s.logger.Warn("failed to journal operation", "operation", operation, "error", err)
		}
	}

	s.version++
	s.logger.Debug("store changed", "operation", operation, "version", s.version)
	s.notify()
}

func (s *Store) save() {
	if s.storage == nil {
		return
	}
	data, err := model.EncodeCanvases(s.Canvases())
	if err != nil {
		s.logger.Error("failed to encode canvases", "error", err)
		return
	}
	if err := s.storage.Save(data); err != nil {
		s.logger.Error("failed to save canvases", "error", err)
	}
}

// afterNotify queues fn to run once the current change notification is done.
func (s *Store) afterNotify(fn func()) {
	s.deferred = append(s.deferred, fn)
}

// notify calls subscribers, then runs deferred work. A change made by a
// subscriber or deferred func triggers another round instead of recursing.
func (s *Store) notify() {
	if s.notifying {
		s.renotify = true
		return
	}
	s.notifying = true
	defer func() { s.notifying = false }()

	for {
		s.renotify = false
		version := s.version
		for _, o := range append([]observer(nil), s.observers...) {
			o.fn(version)
		}

		pending := s.deferred
		s.deferred = nil
		for _, fn := range pending {
			fn()
		}

		if !s.renotify {
			return
		}
	}
}

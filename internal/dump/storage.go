package dump

// Storage persists the serialized canvas document.
// The store writes the whole document after every mutation and reads it once
// at startup, so implementations only need whole-document semantics.
type Storage interface {
	// Load returns the persisted document, or nil if nothing has been saved yet.
	Load() ([]byte, error)

	// Save replaces the persisted document with data.
	Save(data []byte) error
}

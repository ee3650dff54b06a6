package dump

import "dump-go/internal/model"

// Journal records every store mutation for history and snapshot versioning.
type Journal interface {
	// Record appends op and assigns its ID.
	Record(op *model.Operation) error

	// Recent returns up to limit operations, newest first.
	Recent(limit int) ([]*model.Operation, error)

	// LatestID returns the ID of the most recent operation, or 0 when empty.
	LatestID() (int64, error)

	// Close releases the underlying connection.
	Close() error
}

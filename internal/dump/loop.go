package dump

import (
	"context"
	"errors"
	"strings"
	"sync"

	"dump-go/internal/model"
)

// ErrLoopStopped is returned when work is posted to a loop that has exited.
var ErrLoopStopped = errors.New("store loop stopped")

// Loop gives a Store its single mutator. Mutations from any goroutine are
// posted to the loop and applied one at a time on the goroutine running Run.
type Loop struct {
	store   *Store
	logger  Logger
	queue   chan func(*Store)
	done    chan struct{}
	fetches sync.WaitGroup
}

// NewLoop creates a loop that owns store. Call Run to start applying work.
func NewLoop(store *Store, logger Logger) *Loop {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Loop{
		store:  store,
		logger: logger,
		queue:  make(chan func(*Store), 64),
		done:   make(chan struct{}),
	}
}

// Run applies posted work until ctx is cancelled, then applies whatever is
// already queued and returns. Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.queue:
			fn(l.store)
		case <-ctx.Done():
			close(l.done)
			for {
				select {
				case fn := <-l.queue:
					fn(l.store)
				default:
					return nil
				}
			}
		}
	}
}

// Post queues fn to run on the loop. It returns false if the loop has stopped.
func (l *Loop) Post(fn func(*Store)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Store)) error {
	finished := make(chan struct{})
	if !l.Post(func(s *Store) {
		defer close(finished)
		fn(s)
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchTitle resolves the title of a link in the background and posts the
// result back as UpdateItemTitle. A failed fetch posts a nil title; a
// cancelled one posts nothing. The result is applied by item ID, so it is
// harmless if the item moved or was deleted in the meantime.
func (l *Loop) FetchTitle(ctx context.Context, fetcher TitleFetcher, itemID, content string) {
	l.fetches.Add(1)
	go func() {
		defer l.fetches.Done()

		title, err := fetcher.FetchTitle(ctx, content)
		if ctx.Err() != nil {
			l.logger.Debug("title fetch cancelled", "item", itemID)
			return
		}
		if err != nil {
			l.logger.Warn("failed to fetch title", "item", itemID, "content", content, "error", err)
			title = nil
		}

		if !l.Post(func(s *Store) { s.UpdateItemTitle(itemID, title) }) {
			l.logger.Debug("title arrived after loop stopped", "item", itemID)
		}
	}()
}

// Wait blocks until every started title fetch has posted its result.
func (l *Loop) Wait() {
	l.fetches.Wait()
}

// Capture turns raw input into an item on canvasID ("" for the first root
// canvas) and, for links, starts a title fetch when fetcher is non-nil.
// Returns the new item ID.
func (l *Loop) Capture(ctx context.Context, raw, canvasID string, fetcher TitleFetcher) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", errors.New("nothing to capture")
	}

	var itemID string
	if err := l.Do(ctx, func(s *Store) {
		itemID = s.AddItem(model.Item{Content: content}, canvasID)
	}); err != nil {
		return "", err
	}
	if itemID == "" {
		return "", errors.New("target canvas not found")
	}

	if fetcher != nil && Classify(content) == model.ItemLink {
		l.FetchTitle(ctx, fetcher, itemID, content)
	}
	return itemID, nil
}

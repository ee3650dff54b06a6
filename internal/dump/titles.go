package dump

import "context"

// TitleFetcher resolves the document title of a link-shaped item.
type TitleFetcher interface {
	// FetchTitle returns the cleaned title of the page content points at,
	// or nil when the page has none.
	FetchTitle(ctx context.Context, content string) (*string, error)
}

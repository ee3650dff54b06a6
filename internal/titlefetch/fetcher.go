// Package titlefetch looks up the <title> of web pages for link items.
package titlefetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"dump-go/internal/config"
	"dump-go/internal/dump"
)

// maxBody bounds how much of a page is read while looking for the title.
const maxBody = 1 << 20

const defaultUserAgent = "Mozilla/5.0 (compatible; dump/1.0; +title-lookup)"

// HTTPFetcher fetches page titles over HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ dump.TitleFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher with a connect timeout and an overall
// per-request timeout.
func NewHTTPFetcher(connectTimeout, totalTimeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = connectTimeout

	return &HTTPFetcher{
		client:    &http.Client{Transport: transport, Timeout: totalTimeout},
		userAgent: userAgent,
	}
}

// NewFetcherFromConfig returns a fetcher for cfg, or nil when title lookup
// is disabled.
func NewFetcherFromConfig(cfg config.TitlesConfig) dump.TitleFetcher {
	if !cfg.Enabled {
		return nil
	}
	return NewHTTPFetcher(cfg.ConnectTimeoutDuration(), cfg.TotalTimeoutDuration(), cfg.UserAgent)
}

// FetchTitle returns the trimmed, whitespace-collapsed page title for
// content, which may lack a scheme. It returns nil without error when the
// page has no usable title.
func (f *HTTPFetcher) FetchTitle(ctx context.Context, content string) (*string, error) {
	target := dump.NormalizeURL(content)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", target, resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", target, err)
	}

	title, err := ParseTitle(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", target, err)
	}
	if title == "" {
		return nil, nil
	}
	return &title, nil
}

// ParseTitle returns the cleaned text of the first <title> element in an
// HTML document, or "" when there is none.
func ParseTitle(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return CleanTitle(b.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				if inTitle {
					return CleanTitle(b.String()), nil
				}
			case "head":
				return CleanTitle(b.String()), nil
			}
		}
	}
}

// CleanTitle collapses runs of whitespace to single spaces, trims the
// result and normalises it to NFC.
func CleanTitle(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

package dump

import (
	"net/url"
	"regexp"
	"strings"

	"dump-go/internal/model"
)

var urlSchemes = []string{"http://", "https://", "ftp://", "file://"}

// domainPattern matches host names such as example.com or docs.go.dev/path.
var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*\.([a-zA-Z]{2,})(/.*)?$`)

var knownTLDs = toSet(strings.Fields(`
	com org net edu gov mil int co uk de fr jp au ca us io ai app dev tech
	online site website blog news info biz name mobi tv cc me ly be at ch dk
	es fi it nl no se pl br mx in cn ru kr nz za eg ng ke ma tn dz sd so et ug
	tz zm bw sz ls mg mu sc re yt km dj er ss cf td ne ml bf ci gh sn gm gn gw
	lr sl tg bj cv st gq ga cg cd ao mz mw zw
`))

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Classify derives an item type from raw pasted, typed or dropped text.
func Classify(raw string) model.ItemType {
	text := strings.TrimSpace(raw)
	switch {
	case IsURL(text):
		return model.ItemLink
	case strings.HasPrefix(text, "/"), strings.HasPrefix(text, "~"):
		return model.ItemFile
	default:
		return model.ItemText
	}
}

// IsURL reports whether text looks like a link: an explicit http, https, ftp
// or file URL, a www. host, or a domain ending in a recognised top-level domain.
func IsURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \t\r\n") {
		return false
	}

	if hasScheme(text) {
		u, err := url.Parse(text)
		if err != nil {
			return false
		}
		return u.Scheme == "file" || u.Host != ""
	}

	if strings.HasPrefix(text, "www.") {
		u, err := url.Parse("https://" + text)
		return err == nil && u.Hostname() != "" && u.Hostname() != "www."
	}

	m := domainPattern.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	return knownTLDs[strings.ToLower(m[4])]
}

// NormalizeURL returns an absolute URL for link-shaped content, adding
// https:// when no recognised scheme is present.
func NormalizeURL(content string) string {
	content = strings.TrimSpace(content)
	if hasScheme(content) {
		return content
	}
	return "https://" + content
}

// DisplayContent returns the host of a link item, or the raw content otherwise.
func DisplayContent(item model.Item) string {
	if item.Type == model.ItemLink {
		if u, err := url.Parse(NormalizeURL(item.Content)); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return item.Content
}

func hasScheme(text string) bool {
	lower := strings.ToLower(text)
	for _, s := range urlSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

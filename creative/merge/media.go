package merge

import (
	"regexp"
	"sort"
	"strings"

	"github.com/signstack/creative-server/creative"
)

// Media file extensions eligible for service-worker precaching.
var mediaExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {}, ".bmp": {}, ".ico": {},
	".mp4": {}, ".webm": {}, ".ogv": {}, ".mov": {},
	".mp3": {}, ".ogg": {}, ".wav": {}, ".aac": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
}

var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// ExtractMediaURLs walks the creative's tree collecting media references for
// the service-worker manifest: source-like fields whose value ends in a known
// media extension, and css url() references under background-like style keys.
// Relative paths are normalized to site-rooted form; the result is
// de-duplicated and ordered by first appearance.
func ExtractMediaURLs(doc *creative.Document) []string {
	c := &mediaCollector{seen: make(map[string]struct{})}
	c.styles(doc.Styles)
	for i := range doc.Pieces {
		if component := doc.Pieces[i].Component(); component != nil {
			c.component(component)
		}
	}
	return c.urls
}

type mediaCollector struct {
	seen map[string]struct{}
	urls []string
}

func (c *mediaCollector) component(component creative.Component) {
	c.styles(component.Common().Styles)

	switch v := component.(type) {
	case *creative.CardWidget:
		c.source(v.Source)
	case *creative.ImageWidget:
		c.source(v.Source)
	case *creative.VideoWidget:
		c.source(v.Source)
		c.source(v.Poster)
	}

	for _, container := range component.Contents() {
		if child := container.Component(); child != nil {
			c.component(child)
		}
	}
}

// source records a field value when it looks like a media file reference.
func (c *mediaCollector) source(value string) {
	if value == "" {
		return
	}
	dot := strings.LastIndex(value, ".")
	if dot < 0 {
		return
	}
	if _, ok := mediaExtensions[strings.ToLower(value[dot:])]; !ok {
		return
	}
	c.add(normalizeMediaURL(value))
}

// styles scans background-like style keys for css url() references. Keys are
// visited in sorted order so the output is deterministic.
func (c *mediaCollector) styles(styles map[string]string) {
	if len(styles) == 0 {
		return
	}
	keys := make([]string, 0, len(styles))
	for key := range styles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !strings.Contains(strings.ToLower(key), "background") {
			continue
		}
		for _, match := range cssURLPattern.FindAllStringSubmatch(styles[key], -1) {
			c.source(match[1])
		}
	}
}

func (c *mediaCollector) add(url string) {
	if _, ok := c.seen[url]; ok {
		return
	}
	c.seen[url] = struct{}{}
	c.urls = append(c.urls, url)
}

// normalizeMediaURL roots relative paths at the site root. Absolute and
// protocol-relative URLs pass through unchanged.
func normalizeMediaURL(value string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "data:") || strings.HasPrefix(value, "//") {
		return value
	}
	value = strings.TrimPrefix(value, "./")
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value
}

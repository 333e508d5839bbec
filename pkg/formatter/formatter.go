// Package formatter turns recommended items into entries the chat widget can render.
package formatter

import (
	"regexp"
	"strings"

	"perfume-advisor-be/pkg/catalog"
)

const (
	DefaultBaseURL            = "https://www.dpparfum.ro/produs"
	DefaultPlaceholderPicture = "https://dpparfum-1e60d.kxcdn.com/wp-content/uploads/2024/08/standard.webp"
	DefaultFallbackName       = "Nu am găsit un parfum potrivit. Vă rugăm încercați alte opțiuni."
)

// modelCode is the shop's product code inside a canonical name, e.g. "DP B12 - Dior Sauvage" -> "B12".
var modelCode = regexp.MustCompile(`[A-Z]{1,2}-?\d{1,2}`)

type DisplayEntry struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	PictureLink string `json:"link_pic"`
}

type Options struct {
	BaseURL            string
	PlaceholderPicture string
	FallbackName       string
}

// Formatter resolves links against one catalog. It is safe for concurrent use.
type Formatter struct {
	baseURL     string
	placeholder string
	fallback    string
	catalog     []catalog.Item
}

func New(items []catalog.Item, opts Options) *Formatter {
	f := &Formatter{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		placeholder: opts.PlaceholderPicture,
		fallback:    opts.FallbackName,
		catalog:     items,
	}
	if f.baseURL == "" {
		f.baseURL = DefaultBaseURL
	}
	if f.placeholder == "" {
		f.placeholder = DefaultPlaceholderPicture
	}
	if f.fallback == "" {
		f.fallback = DefaultFallbackName
	}
	return f
}

// Format renders items by canonical name.
func (f *Formatter) Format(items []catalog.Item) []DisplayEntry {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.CanonicalName)
	}
	return f.FormatNames(names)
}

// FormatNames renders bare names. Entries sharing a link are dropped after the first one,
// and an empty result is replaced by a single fallback entry.
func (f *Formatter) FormatNames(names []string) []DisplayEntry {
	seen := make(map[string]bool, len(names))
	out := make([]DisplayEntry, 0, len(names))
	for _, name := range names {
		link := f.Link(name)
		if seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, DisplayEntry{
			Name:        name,
			Link:        link,
			PictureLink: f.PictureLink(name),
		})
	}

	if len(out) == 0 {
		return []DisplayEntry{f.Fallback()}
	}
	return out
}

// Fallback is the entry shown when nothing matched.
func (f *Formatter) Fallback() DisplayEntry {
	return DisplayEntry{
		Name:        f.fallback,
		Link:        f.baseURL + "/",
		PictureLink: f.placeholder,
	}
}

// Link builds the product page URL from the model code in name.
func (f *Formatter) Link(name string) string {
	code := strings.ToLower(modelCode.FindString(name))
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "arabian") && strings.Contains(lower, "-"):
		return f.baseURL + "/" + code + "-arabian/"
	case strings.Contains(lower, "private collection"):
		return f.baseURL + "/" + code + "-private-collection/"
	default:
		return f.baseURL + "/" + code
	}
}

// PictureLink looks the name up in the catalog: exact match first, then substring.
func (f *Formatter) PictureLink(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return f.placeholder
	}

	for _, item := range f.catalog {
		if strings.EqualFold(item.CanonicalName, name) {
			return f.pictureOf(item)
		}
	}

	lower := strings.ToLower(name)
	for _, item := range f.catalog {
		candidate := strings.ToLower(item.CanonicalName)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, lower) || strings.Contains(lower, candidate) {
			return f.pictureOf(item)
		}
	}
	return f.placeholder
}

func (f *Formatter) pictureOf(item catalog.Item) string {
	if item.DetailLink == "" {
		return f.placeholder
	}
	return item.DetailLink
}

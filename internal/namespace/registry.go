// Package namespace resolves page namespaces and decides where comment threads are allowed.
package namespace

import (
	"sort"
	"strings"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
)

// Main is the namespace of pages without a prefix
const Main = 0

// DefaultNames is the core namespace set used when none is configured
var DefaultNames = map[int]string{
	0:  "",
	1:  "Talk",
	2:  "User",
	3:  "User talk",
	4:  "Project",
	5:  "Project talk",
	6:  "File",
	7:  "File talk",
	10: "Template",
	11: "Template talk",
	14: "Category",
	15: "Category talk",
}

// Registry is the immutable namespace table built once at startup
type Registry struct {
	names   map[int]string
	byName  map[string]int
	enabled map[int]bool
}

// New builds a Registry. Content namespaces are merged into the enabled set
// unless the enabled set already has an explicit entry for them.
func New(cfg config.CommentsConfig) *Registry {
	names := cfg.Namespaces
	if len(names) == 0 {
		names = DefaultNames
	}

	r := &Registry{
		names:   make(map[int]string, len(names)),
		byName:  make(map[string]int, len(names)),
		enabled: make(map[int]bool, len(cfg.EnabledNamespaces)+len(cfg.ContentNamespaces)),
	}
	for id, name := range names {
		r.names[id] = name
		if name != "" {
			r.byName[normalize(name)] = id
		}
	}
	for id, on := range cfg.EnabledNamespaces {
		r.enabled[id] = on
	}
	for _, id := range cfg.ContentNamespaces {
		if _, explicit := r.enabled[id]; !explicit {
			r.enabled[id] = true
		}
	}
	return r
}

// CommentsEnabled reports whether the namespace of page allows comment threads
func (r *Registry) CommentsEnabled(page *models.Page) bool {
	return r.Enabled(page.Namespace)
}

// Enabled reports whether comments are enabled for namespace id
func (r *Registry) Enabled(id int) bool {
	return r.enabled[id]
}

// EnabledNamespaces returns the enabled namespace ids in ascending order
func (r *Registry) EnabledNamespaces() []int {
	out := make([]int, 0, len(r.enabled))
	for id, on := range r.enabled {
		if on {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// Name returns the canonical name of namespace id
func (r *Registry) Name(id int) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// Parse splits a prefixed title into namespace and title.
// An unknown prefix leaves the whole text in the main namespace.
func (r *Registry) Parse(text string) (int, string) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "_", " "))
	prefix, rest, found := strings.Cut(text, ":")
	if !found {
		return Main, text
	}
	if id, ok := r.byName[normalize(prefix)]; ok {
		return id, strings.TrimSpace(rest)
	}
	return Main, text
}

// PrefixedText returns the full title of page including its namespace prefix
func (r *Registry) PrefixedText(page *models.Page) string {
	name := r.names[page.Namespace]
	if name == "" {
		return page.Title
	}
	return name + ":" + page.Title
}

// RootName returns the title up to the first "/", i.e. the owner of a user subpage
func RootName(page *models.Page) string {
	root, _, _ := strings.Cut(page.Title, "/")
	return root
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
}

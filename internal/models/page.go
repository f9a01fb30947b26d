package models

// NamespaceUser is the namespace holding user pages
const NamespaceUser = 2

// Page is a content page comments can be attached to
type Page struct {
	ID        int64  `json:"id" db:"id"`
	Namespace int    `json:"ns" db:"namespace"`
	Title     string `json:"title" db:"title"` // without namespace prefix
}

// InNamespace reports whether the page belongs to namespace ns
func (p *Page) InNamespace(ns int) bool {
	return p.Namespace == ns
}

package models

// ExportPage is the page header of a page-group in an export document
type ExportPage struct {
	Title string `json:"title"`
	NS    int    `json:"ns"`
	ID    int64  `json:"id"`
}

// ExportComment is one comment of a page-group in an export document
type ExportComment struct {
	ID              int64   `json:"id"`
	ParentID        *int64  `json:"parentId"`
	Timestamp       string  `json:"timestamp"`
	EditedTimestamp *string `json:"editedTimestamp"`
	Wikitext        string  `json:"wikitext"`
	Username        string  `json:"username"`
}

// ExportRow is a comment joined with its page and the live name of its account author
type ExportRow struct {
	Comment   Comment
	Page      Page
	ActorName string
}

// ImportPage is the page header as read from an import document.
// Pointer fields distinguish absent values from zero values.
type ImportPage struct {
	Title *string `json:"title"`
	NS    *int    `json:"ns"`
	ID    *int64  `json:"id"`
}

// ImportComment is a comment as read from an import document
type ImportComment struct {
	ID              *int64  `json:"id"`
	ParentID        *int64  `json:"parentId"`
	Timestamp       string  `json:"timestamp"`
	EditedTimestamp *string `json:"editedTimestamp"`
	Wikitext        string  `json:"wikitext"`
	Username        *string `json:"username"`
}

// ImportSummary holds cumulative import counts
type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Pages    int `json:"pages"`
}

// Add accumulates another summary into s
func (s *ImportSummary) Add(o ImportSummary) {
	s.Imported += o.Imported
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Pages += o.Pages
}

// ExportStats describes a finished export
type ExportStats struct {
	Pages    int `json:"pages"`
	Comments int `json:"comments"`
}

// AuditEntry is a row of the administrative audit trail
type AuditEntry struct {
	ID          int64          `json:"id" db:"id"`
	Type        string         `json:"type" db:"log_type"`
	Action      string         `json:"action" db:"action"`
	PerformerID int64          `json:"performer_id" db:"performer_id"`
	PageID      int64          `json:"page_id" db:"page_id"`
	Params      map[string]any `json:"params" db:"params"`
}

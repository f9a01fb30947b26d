package validation

import (
	"strings"

	"github.com/page-comments-api/internal/models"
)

// Reason is a machine-readable code explaining why a submission was rejected
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonMissingTarget    Reason = "missing-target"
	ReasonEmptyContent     Reason = "empty-content"
	ReasonParentMissing    Reason = "parent-missing"
	ReasonParentHasParent  Reason = "parent-has-parent"
	ReasonPageMissing      Reason = "page-missing"
	ReasonCommentsDisabled Reason = "comments-disabled"
)

var reasonMessages = map[Reason]string{
	ReasonMissingTarget:    "either pageid or parentid is required",
	ReasonEmptyContent:     "comment text is empty",
	ReasonParentMissing:    "the comment being replied to does not exist",
	ReasonParentHasParent:  "replies cannot be nested more than one level",
	ReasonPageMissing:      "the page does not exist",
	ReasonCommentsDisabled: "comments are disabled on this page",
}

// Message returns a human-readable description of the reason
func (r Reason) Message() string {
	return reasonMessages[r]
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// CheckSubmission trims the content of req in place and checks that it names a target
// and carries some text. Checks run in order; the first failure is returned.
func CheckSubmission(req *models.SubmitRequest) Reason {
	if req.PageID == 0 && req.ParentID == 0 {
		return ReasonMissingTarget
	}
	req.HTML = strings.TrimSpace(req.HTML)
	req.Wikitext = strings.TrimSpace(req.Wikitext)
	if req.HTML == "" && req.Wikitext == "" {
		return ReasonEmptyContent
	}
	return ReasonNone
}

// CheckParent enforces the two-level reply tree. parent is nil when it was not found.
func CheckParent(parent *models.Comment) Reason {
	if parent == nil || parent.IsDeleted() {
		return ReasonParentMissing
	}
	if parent.HasParent() {
		return ReasonParentHasParent
	}
	return ReasonNone
}

// CheckTarget verifies the page exists and accepts new comments
func CheckTarget(page *models.Page, status models.ControlStatus, namespaceEnabled bool) Reason {
	if page == nil {
		return ReasonPageMissing
	}
	if !status.AllowsSubmission() || !namespaceEnabled {
		return ReasonCommentsDisabled
	}
	return ReasonNone
}

// ValidateImportPage checks the page header of an import group
func ValidateImportPage(p *models.ImportPage) []ValidationError {
	var errors []ValidationError
	if p == nil {
		return append(errors, ValidationError{Field: "page", Message: "page is required"})
	}
	if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}
	return errors
}

// ValidateImportComment checks a single imported comment
func ValidateImportComment(c *models.ImportComment) []ValidationError {
	var errors []ValidationError

	if c.ID == nil || *c.ID == 0 {
		errors = append(errors, ValidationError{Field: "id", Message: "id is required"})
	}

	if c.Timestamp != "" {
		if _, err := models.ParseTimestamp(c.Timestamp); err != nil {
			errors = append(errors, ValidationError{Field: "timestamp", Message: "invalid timestamp", Value: c.Timestamp})
		}
	}

	if c.EditedTimestamp != nil && *c.EditedTimestamp != "" {
		if _, err := models.ParseTimestamp(*c.EditedTimestamp); err != nil {
			errors = append(errors, ValidationError{Field: "editedTimestamp", Message: "invalid timestamp", Value: *c.EditedTimestamp})
		}
	}

	return errors
}

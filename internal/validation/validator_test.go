package validation

import (
	"testing"

	"github.com/page-comments-api/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func TestCheckSubmission(t *testing.T) {
	tests := []struct {
		name string
		req  models.SubmitRequest
		want Reason
	}{
		{
			name: "page comment with wikitext",
			req:  models.SubmitRequest{PageID: 1, Wikitext: "hello"},
			want: ReasonNone,
		},
		{
			name: "reply with html",
			req:  models.SubmitRequest{ParentID: 7, HTML: "<p>hi</p>"},
			want: ReasonNone,
		},
		{
			name: "no target",
			req:  models.SubmitRequest{Wikitext: "hello"},
			want: ReasonMissingTarget,
		},
		{
			name: "target checked before content",
			req:  models.SubmitRequest{},
			want: ReasonMissingTarget,
		},
		{
			name: "whitespace only",
			req:  models.SubmitRequest{PageID: 1, Wikitext: "  \n\t", HTML: "   "},
			want: ReasonEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if got := CheckSubmission(&req); got != tt.want {
				t.Errorf("CheckSubmission() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckSubmission_TrimsContent(t *testing.T) {
	req := models.SubmitRequest{PageID: 1, Wikitext: "  hello  ", HTML: "\n"}
	CheckSubmission(&req)
	if req.Wikitext != "hello" || req.HTML != "" {
		t.Errorf("content not trimmed: %+v", req)
	}
}

func TestCheckParent(t *testing.T) {
	deletedBy := int64(3)
	tests := []struct {
		name   string
		parent *models.Comment
		want   Reason
	}{
		{"top-level parent", &models.Comment{ID: 1}, ReasonNone},
		{"not found", nil, ReasonParentMissing},
		{"tombstoned", &models.Comment{ID: 1, DeletedActor: &deletedBy}, ReasonParentMissing},
		{"parent is a reply", &models.Comment{ID: 2, ParentID: int64Ptr(1)}, ReasonParentHasParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckParent(tt.parent); got != tt.want {
				t.Errorf("CheckParent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckTarget(t *testing.T) {
	page := &models.Page{ID: 1}
	tests := []struct {
		name    string
		page    *models.Page
		status  models.ControlStatus
		enabled bool
		want    Reason
	}{
		{"open page", page, models.ControlEnabled, true, ReasonNone},
		{"missing page", nil, models.ControlEnabled, true, ReasonPageMissing},
		{"read-only", page, models.ControlReadOnly, true, ReasonCommentsDisabled},
		{"disabled", page, models.ControlDisabled, true, ReasonCommentsDisabled},
		{"namespace off", page, models.ControlEnabled, false, ReasonCommentsDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckTarget(tt.page, tt.status, tt.enabled); got != tt.want {
				t.Errorf("CheckTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReasonMessage(t *testing.T) {
	for _, r := range []Reason{ReasonMissingTarget, ReasonEmptyContent, ReasonParentMissing,
		ReasonParentHasParent, ReasonPageMissing, ReasonCommentsDisabled} {
		if r.Message() == "" {
			t.Errorf("reason %q has no message", r)
		}
	}
}

func TestValidateImportPage(t *testing.T) {
	tests := []struct {
		name       string
		page       *models.ImportPage
		wantFields []string
	}{
		{"valid", &models.ImportPage{Title: strPtr("Main Page")}, nil},
		{"nil page", nil, []string{"page"}},
		{"missing title", &models.ImportPage{}, []string{"title"}},
		{"blank title", &models.ImportPage{Title: strPtr("  ")}, []string{"title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateImportPage(tt.page)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %+v", len(errs), len(tt.wantFields), errs)
			}
			for i, f := range tt.wantFields {
				if errs[i].Field != f {
					t.Errorf("error %d field = %q, want %q", i, errs[i].Field, f)
				}
			}
		})
	}
}

func TestValidateImportComment(t *testing.T) {
	tests := []struct {
		name       string
		comment    models.ImportComment
		wantFields []string
	}{
		{
			name:    "valid",
			comment: models.ImportComment{ID: int64Ptr(1), Timestamp: "20240101000000"},
		},
		{
			name:    "rfc3339 accepted",
			comment: models.ImportComment{ID: int64Ptr(1), Timestamp: "2024-01-01T00:00:00Z"},
		},
		{
			name:    "empty timestamp accepted",
			comment: models.ImportComment{ID: int64Ptr(1)},
		},
		{
			name:       "missing id",
			comment:    models.ImportComment{Timestamp: "20240101000000"},
			wantFields: []string{"id"},
		},
		{
			name:       "zero id",
			comment:    models.ImportComment{ID: int64Ptr(0)},
			wantFields: []string{"id"},
		},
		{
			name:       "bad timestamps",
			comment:    models.ImportComment{ID: int64Ptr(3), Timestamp: "yesterday", EditedTimestamp: strPtr("2024")},
			wantFields: []string{"timestamp", "editedTimestamp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateImportComment(&tt.comment)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %+v", len(errs), len(tt.wantFields), errs)
			}
			for i, f := range tt.wantFields {
				if errs[i].Field != f {
					t.Errorf("error %d field = %q, want %q", i, errs[i].Field, f)
				}
			}
		})
	}
}

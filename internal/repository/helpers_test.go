package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/page-comments-api/internal/models"
)

func TestNullHelpers(t *testing.T) {
	if v := nullString(""); v.Valid {
		t.Error("empty string should be NULL")
	}
	if v := nullString("x"); !v.Valid || v.String != "x" {
		t.Errorf("unexpected %+v", v)
	}
	if v := nullInt64(0); v.Valid {
		t.Error("zero id should be NULL")
	}
	if v := nullInt64(3); !v.Valid || v.Int64 != 3 {
		t.Errorf("unexpected %+v", v)
	}
	if v := nullInt64Ptr(nil); v.Valid {
		t.Error("nil should be NULL")
	}
	id := int64(8)
	if v := nullInt64Ptr(&id); !v.Valid || v.Int64 != 8 {
		t.Errorf("unexpected %+v", v)
	}
}

func TestFillComment(t *testing.T) {
	edited := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var anon models.Comment
	fillComment(&anon, sql.NullInt64{}, sql.NullString{String: "192.0.2.1", Valid: true}, sql.NullInt64{}, sql.NullTime{}, sql.NullInt64{})
	if anon.ActorID != 0 || anon.Username != "192.0.2.1" || anon.ParentID != nil || anon.EditedAt != nil || anon.IsDeleted() {
		t.Errorf("unexpected anonymous comment %+v", anon)
	}

	var reply models.Comment
	fillComment(&reply,
		sql.NullInt64{Int64: 4, Valid: true},
		sql.NullString{},
		sql.NullInt64{Int64: 9, Valid: true},
		sql.NullTime{Time: edited, Valid: true},
		sql.NullInt64{Int64: 1, Valid: true},
	)
	if reply.ActorID != 4 || reply.Username != "" {
		t.Errorf("unexpected author %d/%q", reply.ActorID, reply.Username)
	}
	if reply.ParentID == nil || *reply.ParentID != 9 {
		t.Errorf("unexpected parent %v", reply.ParentID)
	}
	if reply.EditedAt == nil || !reply.EditedAt.Equal(edited) || !reply.IsDeleted() {
		t.Errorf("unexpected edit/delete state %+v", reply)
	}
}

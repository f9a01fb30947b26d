package models

import (
	"time"
)

// Comment represents a discussion comment attached to a page
type Comment struct {
	ID           int64      `json:"id" db:"id"`
	PageID       int64      `json:"page_id" db:"page_id"`
	ActorID      int64      `json:"-" db:"actor_id"` // 0 when not account-authored
	Username     string     `json:"-" db:"username"` // free-text author when ActorID is 0
	ParentID     *int64     `json:"parent_id" db:"parent_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty" db:"edited_at"`
	Wikitext     string     `json:"wikitext" db:"wikitext"`
	HTML         string     `json:"html" db:"html"`
	Rating       int        `json:"rating" db:"rating"`
	DeletedActor *int64     `json:"-" db:"deleted_actor"` // tombstone marker
}

// Author identifies who wrote a comment. A zero ID means the name is free text.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IsRegistered reports whether the author references an account
func (a Author) IsRegistered() bool {
	return a.ID != 0
}

// IsDeleted reports whether the comment has been tombstoned
func (c *Comment) IsDeleted() bool {
	return c.DeletedActor != nil
}

// HasParent reports whether the comment is a reply
func (c *Comment) HasParent() bool {
	return c.ParentID != nil
}

// SetAuthor stores the author as either an account reference or a free-text name, never both
func (c *Comment) SetAuthor(a Author) {
	if a.IsRegistered() {
		c.ActorID = a.ID
		c.Username = ""
		return
	}
	c.ActorID = 0
	c.Username = a.Name
}

// CommentResponse is the API representation of a stored comment
type CommentResponse struct {
	ID              int64   `json:"id"`
	PageID          int64   `json:"pageId"`
	ParentID        *int64  `json:"parentId"`
	Timestamp       string  `json:"timestamp"`
	EditedTimestamp *string `json:"editedTimestamp"`
	Wikitext        string  `json:"wikitext"`
	HTML            string  `json:"html"`
	Author          Author  `json:"author"`
	Deleted         bool    `json:"deleted"`
}

// NewCommentResponse builds the API view of a comment. name is the resolved author name.
func NewCommentResponse(c *Comment, name string) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		PageID:    c.PageID,
		ParentID:  c.ParentID,
		Timestamp: FormatTimestamp(c.CreatedAt),
		Wikitext:  c.Wikitext,
		HTML:      c.HTML,
		Author:    Author{ID: c.ActorID, Name: name},
		Deleted:   c.IsDeleted(),
	}
	if c.EditedAt != nil {
		edited := FormatTimestamp(*c.EditedAt)
		resp.EditedTimestamp = &edited
	}
	return resp
}

// SubmitRequest is the body of a comment submission
type SubmitRequest struct {
	PageID   int64  `json:"pageid"`
	ParentID int64  `json:"parentid"`
	HTML     string `json:"html"`
	Wikitext string `json:"wikitext"`
}

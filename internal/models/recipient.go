package models

// NotificationKind classifies why a user is notified about a comment
type NotificationKind string

const (
	NotifyReply     NotificationKind = "reply"
	NotifyPageOwner NotificationKind = "page-owner"
	NotifyMention   NotificationKind = "mention"
)

// RecipientEntry is one user to notify for a comment event
type RecipientEntry struct {
	UserID   int64            `json:"user_id"`
	UserName string           `json:"user_name"`
	Kind     NotificationKind `json:"kind"`
}

// RecipientSet keeps recipients in insertion order with at most one entry per user.
// The first classification recorded for a user wins.
type RecipientSet struct {
	entries []RecipientEntry
	seen    map[int64]struct{}
}

// NewRecipientSet creates an empty RecipientSet
func NewRecipientSet() *RecipientSet {
	return &RecipientSet{seen: make(map[int64]struct{})}
}

// Add records the entry unless its user is already present. It reports whether it was added.
func (s *RecipientSet) Add(entry RecipientEntry) bool {
	if _, ok := s.seen[entry.UserID]; ok {
		return false
	}
	s.seen[entry.UserID] = struct{}{}
	s.entries = append(s.entries, entry)
	return true
}

// Has reports whether the user is already recorded
func (s *RecipientSet) Has(userID int64) bool {
	_, ok := s.seen[userID]
	return ok
}

// Len returns the number of recipients
func (s *RecipientSet) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the recipients in insertion order
func (s *RecipientSet) Entries() []RecipientEntry {
	out := make([]RecipientEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Notification is the payload handed to the notification service, one per recipient
type Notification struct {
	Type        NotificationKind `json:"type"`
	RecipientID int64            `json:"recipient"`
	PageID      int64            `json:"pageId"`
	PageTitle   string           `json:"targetPage"`
	Agent       Author           `json:"agent"`
	CommentID   int64            `json:"commentId"`
	Wikitext    string           `json:"wikitext"`
}

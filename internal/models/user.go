package models

// User is a registered account that can author comments and receive notifications
type User struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Author returns the user as a comment author
func (u *User) Author() Author {
	return Author{ID: u.ID, Name: u.Name}
}

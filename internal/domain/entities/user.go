package entities

import "strings"

type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

func (n Name) String() string {
	return strings.TrimSpace(n.First + " " + n.Last)
}

// User is a registered volunteer or organizer. PasswordHash never leaves the server.
type User struct {
	ID           string `json:"id"`
	Name         Name   `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile,omitempty"`
	PasswordHash string `json:"-"`
}

// UnknownUser stands in for roster ids that no longer resolve.
func UnknownUser(id string) User {
	return User{ID: id, Name: Name{First: "Unknown", Last: "User"}}
}

// NormalizeEmail trims and lower-cases an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

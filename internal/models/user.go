package models

import "time"

// User represents a registered account in the roster slot. The password is
// stored in plain comparable form, mirroring the data the original web
// client kept in browser storage.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInfo describes an account in responses, without the secret.
type UserInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Info strips the secret for presentation.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

package domain

import "time"

// Session is what the client persists between runs.
type Session struct {
	Token   string `json:"token" yaml:"token"`
	Email   string `json:"email" yaml:"email"`
	IsAdmin bool   `json:"is_admin" yaml:"is_admin"`
}

// Active reports whether both a token and an email are present. The token is
// not validated; an expired token surfaces on the first authenticated call.
func (s Session) Active() bool {
	return s.Token != "" && s.Email != ""
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Principal is the identity carried by a verified token.
type Principal struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

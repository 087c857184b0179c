package user

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// User is an authenticated seller account. ClientID and SecurityKey are the
// optional partner-platform credentials used when relaying cancellations on
// the merchant's behalf. Password always holds a bcrypt hash, never plaintext.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	ClientID    string `json:"-"`
	SecurityKey string `json:"-"`
}

// HasPartnerCredentials reports whether the account carries the partner
// platform client id and security key.
func (u *User) HasPartnerCredentials() bool {
	return u.ClientID != "" && u.SecurityKey != ""
}

package domain

import "time"

// User represents a registered customer
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserPatch lists the user fields a client may change. Nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
}

func (u *User) SetUsername(username string) {
	u.Username = username
}

func (u *User) SetEmail(email string) {
	u.Email = email
}

func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
}

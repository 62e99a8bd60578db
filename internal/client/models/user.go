// Package models defines the client-side data model: the provider identity,
// the merged user record, notes, question papers and admin aggregates.
package models

// Identity is what the identity provider knows about the signed-in account.
// Bearer tokens are not part of it; they are fetched per call from the provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// UserStats are per-user upload/download counters reported by the backend.
type UserStats struct {
	Uploads   int `json:"uploads"`
	Downloads int `json:"downloads"`
}

// User is the application-level record: the provider identity merged with
// the backend profile.
type User struct {
	ID        string     `json:"uid"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"photoURL"`
	IsAdmin   bool       `json:"isAdmin"`
	Wallet    int        `json:"wallet"`
	Semester  string     `json:"semester,omitempty"`
	Branch    string     `json:"branch,omitempty"`
	Stats     *UserStats `json:"stats,omitempty"`
}

// Clone returns a deep copy, so snapshots handed to views never alias the
// store's record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Stats != nil {
		s := *u.Stats
		c.Stats = &s
	}
	return &c
}

// UserPatch is a partial user record as returned by a profile update. Nil
// fields were not sent by the backend.
type UserPatch struct {
	Name      *string    `json:"name,omitempty"`
	AvatarURL *string    `json:"photoURL,omitempty"`
	Semester  *string    `json:"semester,omitempty"`
	Branch    *string    `json:"branch,omitempty"`
	IsAdmin   *bool      `json:"isAdmin,omitempty"`
	Wallet    *int       `json:"wallet,omitempty"`
	Stats     *UserStats `json:"stats,omitempty"`
}

// AdminUser is a row of the admin users table.
type AdminUser struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	Wallet    int    `json:"wallet"`
	CreatedAt string `json:"createdAt,omitempty"`
}

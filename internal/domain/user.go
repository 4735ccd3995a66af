package domain

import "time"

type User struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	Cart         []CartLine `bson:"cart"`
	CartVersion  int64      `bson:"cart_version"`
	CreatedAt    time.Time  `bson:"created_at"`
}

// Identity is what a session token resolves to.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (u *User) Identity() Identity {
	return Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
	}
}

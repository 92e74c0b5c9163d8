package models

import "time"

// AdminAccount is an operator of this dashboard. Accounts live in the admin
// panel's own Mongo database, not in the dating app's store.
type AdminAccount struct {
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Disabled     bool      `json:"disabled" bson:"disabled"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Ok            bool   `json:"ok"`
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Token         string `json:"token,omitempty"`
}

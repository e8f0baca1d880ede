package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the stored account document. Timestamps are epoch milliseconds.
// The reset fields only exist between a forgot-password request and the
// matching reset (or its expiry); at most one live reset token exists per
// user because issuing a new one overwrites the previous pair.
type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email            string        `bson:"email" json:"email"`
	Name             string        `bson:"name" json:"name"`
	PasswordHash     string        `bson:"passwordHash" json:"-"` // never expose
	Role             Role          `bson:"role" json:"role"`
	CreatedAt        int64         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        int64         `bson:"updatedAt" json:"updatedAt"`
	ResetTokenHash   string        `bson:"resetTokenHash,omitempty" json:"-"`
	ResetTokenExpiry int64         `bson:"resetTokenExpiry,omitempty" json:"-"`
}

// Principal is the authenticated view of a user attached to a request.
// Built by the resolver from the stored document, so the role reflects
// storage rather than whatever the token was minted with.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ToPrincipal strips everything a request handler has no business seeing.
func (u *User) ToPrincipal() Principal {
	return Principal{
		ID:    u.ID.Hex(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

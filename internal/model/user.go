// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the local mirror of an identity held by the external identity
// provider.
//
// UserID is the provider's subject (e.g. "user_2abc..."). It is what session
// tokens carry and what every owned record points at. ID is our own xid,
// kept so primary keys are not tied to a third party's numbering scheme.
//
// IsPro is never written by the identity sync; it changes out of band.
type User struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsPro     bool      `json:"isPro"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

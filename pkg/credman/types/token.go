// Package types defines common data structures used throughout the credman
// package for credential management.
package types

import (
	"time"
)

// AccountToken holds the OAuth credentials for one connected platform
// account. The AccessToken field is stored encrypted when persisted by the
// TokenManager.
type AccountToken struct {
	// Platform is the social network the account belongs to.
	Platform string
	// AccountId is the platform-side identifier of the connected account.
	AccountId string
	// UserId is the local owner of the connection.
	UserId string
	// AccessToken is the OAuth bearer token, stored encrypted when persisted.
	AccessToken string
	// RefreshToken is the optional refresh token, if the platform issued one.
	RefreshToken string
	// ExpiresAt is when the access token stops working. Zero means the
	// platform reported no expiry.
	ExpiresAt time.Time
}

// Key returns the storage key for the token, unique per platform account.
func (t *AccountToken) Key() string {
	return t.Platform + "/" + t.AccountId
}

// Expired reports whether the token's expiry has passed. Tokens without an
// expiry never expire.
func (t *AccountToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now)
}

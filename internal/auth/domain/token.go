package domain

import "time"

// TokenPair is what issuance returns: a short-lived access token and a
// longer-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // access token lifetime in seconds
	Scope        string `json:"scope,omitempty"`      // space-delimited
}

// RevokedToken marks a token id (jti) as permanently dishonoured. Rows are
// written on logout and read on every validation; ExpiresAt mirrors the
// token's own expiry so storage can be reclaimed once the token would have
// died anyway.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	RevokedAt time.Time
}

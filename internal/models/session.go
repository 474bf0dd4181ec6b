package models

// Session is the authorized session for one service.
//
// ExpiresIn is seconds from issuance as returned by the token endpoint; it is never converted to an
// absolute time. UserID and UserName carry service-specific identity, and PKCE holds the verifier
// for the proof-key service.
type Session struct {
	TokenType    string `toml:"token_type" json:"token_type"`
	ExpiresIn    int64  `toml:"expires_in" json:"expires_in"`
	AccessToken  string `toml:"access_token" json:"access_token"`
	RefreshToken string `toml:"refresh_token" json:"refresh_token"`
	Code         string `toml:"code" json:"-"`
	UserID       int    `toml:"user_id,omitempty" json:"user_id,omitempty"`
	UserName     string `toml:"user_name,omitempty" json:"user_name,omitempty"`
	PKCE         string `toml:"pkce,omitempty" json:"-"`
}

// Valid reports whether the session carries a usable access token.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != ""
}

// Authorization returns the Authorization header value, defaulting the scheme to Bearer.
func (s *Session) Authorization() string {
	scheme := s.TokenType
	if scheme == "" || scheme == "bearer" {
		scheme = "Bearer"
	}
	return scheme + " " + s.AccessToken
}

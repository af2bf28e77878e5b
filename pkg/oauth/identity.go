package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Identity is the normalized user returned by the flow. Optional fields are
// nil when the provider did not return them.
type Identity struct {
	ID                string
	Username          *string
	FullName          *string
	Email             *string
	ProfilePictureURL *string
	Website           *string

	// Raw is the provider's user object, untouched.
	Raw map[string]any

	AccessToken  string
	RefreshToken *string
	ExpiresIn    *int
}

// identityJSON is the wire form served by the callback server.
type identityJSON struct {
	ID                string         `json:"id"`
	Username          *string        `json:"username,omitempty"`
	FullName          *string        `json:"full_name,omitempty"`
	Email             *string        `json:"email,omitempty"`
	ProfilePictureURL *string        `json:"profile_picture,omitempty"`
	Website           *string        `json:"website,omitempty"`
	Raw               map[string]any `json:"raw,omitempty"`
	AccessToken       string         `json:"access_token"`
	RefreshToken      *string        `json:"refresh_token,omitempty"`
	ExpiresIn         *int           `json:"expires_in,omitempty"`
}

// JSON returns a representation suitable for encoding/json.
func (i *Identity) JSON() any {
	return identityJSON{
		ID:                i.ID,
		Username:          i.Username,
		FullName:          i.FullName,
		Email:             i.Email,
		ProfilePictureURL: i.ProfilePictureURL,
		Website:           i.Website,
		Raw:               i.Raw,
		AccessToken:       i.AccessToken,
		RefreshToken:      i.RefreshToken,
		ExpiresIn:         i.ExpiresIn,
	}
}

// OAuth2Token converts the attached token bundle to an *oauth2.Token.
// Expiry is computed relative to now when ExpiresIn is known.
func (i *Identity) OAuth2Token(now time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: i.AccessToken,
		TokenType:   "Bearer",
	}
	if i.RefreshToken != nil {
		tok.RefreshToken = *i.RefreshToken
	}
	if i.ExpiresIn != nil {
		tok.Expiry = now.Add(time.Duration(*i.ExpiresIn) * time.Second)
	}
	return tok
}

func (i *Identity) attachToken(tok *TokenResponse) {
	i.AccessToken = tok.AccessToken
	i.RefreshToken = tok.RefreshToken
	i.ExpiresIn = tok.ExpiresIn
}

// StringField returns raw[key] as a string pointer, or nil when the key is
// absent, null, or not a string.
func StringField(raw map[string]any, key string) *string {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	return &s
}

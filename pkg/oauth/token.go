package oauth

import (
	"encoding/json"
	"math"
	"strconv"
)

// TokenResponse is the decoded token endpoint response.
type TokenResponse struct {
	AccessToken  string
	RefreshToken *string
	ExpiresIn    *int
	// Raw is the full decoded body, including provider-specific keys such
	// as Instagram's embedded "user" object.
	Raw map[string]any
}

// tokenFromDocument extracts the token fields. Missing or mistyped keys are
// left empty rather than treated as errors.
func tokenFromDocument(doc map[string]any) *TokenResponse {
	tok := &TokenResponse{Raw: doc}
	if s, ok := doc["access_token"].(string); ok {
		tok.AccessToken = s
	}
	tok.RefreshToken = StringField(doc, "refresh_token")
	tok.ExpiresIn = intField(doc, "expires_in")
	return tok
}

func intField(raw map[string]any, key string) *int {
	var n int
	switch v := raw[key].(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil
		}
		n = int(i)
	case float64:
		if v != math.Trunc(v) {
			return nil
		}
		n = int(v)
	case int:
		n = v
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

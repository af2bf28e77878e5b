package oauth

import (
	"net/http"
	"net/url"
)

// Callback carries the parameters the provider appends to the redirect URL.
type Callback struct {
	Code  string
	State string

	// Error fields are set when the user declined or the provider failed.
	Error            string
	ErrorReason      string
	ErrorDescription string
}

// CallbackFromValues reads a Callback from query or form values.
func CallbackFromValues(v url.Values) Callback {
	return Callback{
		Code:             v.Get("code"),
		State:            v.Get("state"),
		Error:            v.Get("error"),
		ErrorReason:      v.Get("error_reason"),
		ErrorDescription: v.Get("error_description"),
	}
}

// CallbackFromRequest reads a Callback from the query string and, for POST
// callbacks, the form body.
func CallbackFromRequest(r *http.Request) Callback {
	if err := r.ParseForm(); err != nil {
		return CallbackFromValues(r.URL.Query())
	}
	return CallbackFromValues(r.Form)
}

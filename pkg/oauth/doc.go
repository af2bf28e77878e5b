// Package oauth implements the OAuth2 authorization-code flow with CSRF state
// validation.
//
// A Flow is built from a Config and a Provider. Authenticate produces the
// redirect to the provider and, unless the flow is stateless, stores a
// random nonce in the caller's session.Store. RetrieveUser handles the
// callback: it pulls the nonce (consuming it), compares it with the returned
// state, exchanges the code for a token, fetches the user and maps it to an
// Identity.
//
//	flow, err := oauth.NewFlow(cfg, instagram.NewProvider())
//	redirect, err := flow.Authenticate(ctx, store)
//	// ... user returns to the redirect URL ...
//	identity, err := flow.RetrieveUser(ctx, store, oauth.CallbackFromRequest(r))
//
// A state mismatch returns an error matching errors.ErrInvalidState and no
// network call is made. Nothing is retried.
package oauth

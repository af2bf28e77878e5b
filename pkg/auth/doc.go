// Package auth persists access tokens obtained through the authorization
// flow.
//
// Manager tries the system keyring first, then an AES-GCM encrypted file in
// the igauth config directory, then the IGAUTH_ACCESS_TOKEN environment
// variable (read-only). Records are keyed by username, or by user ID when the
// provider returned no username.
package auth

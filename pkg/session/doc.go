// Package session stores the pending authorization state between the
// redirect to the provider and the callback.
//
// A Store is scoped to one end-user session. Pull removes the value it
// returns, so a nonce can be checked at most once.
//
// Three implementations are provided:
//
//   - MemoryStore keeps values in process and records call counts for tests.
//   - RedisStore keeps values in Redis under a per-session key with a TTL.
//   - ChiStore adapts the gitea.com/go-chi/session middleware store used by
//     the callback server.
package session

// Package instagram implements the Instagram OAuth provider and a thin client
// for the v1 REST endpoints.
//
// Provider plugs into oauth.NewFlow. Client wraps the users, relationships,
// media, likes, comments, tags and locations endpoints; each method performs
// one GET, POST or DELETE with the access token in the query string and
// returns the decoded JSON as a Document.
//
//	client := instagram.NewClient(instagram.WithLimiter(ratelimit.PerHour(500)))
//	doc, err := client.TagRecentMedia(ctx, token, "golang")
//
// Error responses come back as *errors.Error carrying the status code and
// the raw body. CreateComment, ModifyRelationship and SearchLocations check
// their input first and return an error matching errors.ErrInvalidParameter
// without sending anything.
package instagram

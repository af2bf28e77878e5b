package instagram

import "context"

const (
	myRecentMediaPath   = "users/self/media/recent"
	myLikedMediaPath    = "users/self/media/liked"
	userPath            = "users/%s"
	userRecentMediaPath = "users/%s/media/recent"
	userSearchPath      = "users/search?q=%s"
)

// MyRecentMedia returns the most recent media of the token owner.
func (c *Client) MyRecentMedia(ctx context.Context, token string) (Document, error) {
	return c.get(ctx, token, myRecentMediaPath)
}

// MyLikedMedia returns the media the token owner liked.
func (c *Client) MyLikedMedia(ctx context.Context, token string) (Document, error) {
	return c.get(ctx, token, myLikedMediaPath)
}

// User returns basic information about a user.
func (c *Client) User(ctx context.Context, token, userID string) (Document, error) {
	return c.get(ctx, token, userPath, userID)
}

// UserRecentMedia returns the most recent media of a user.
func (c *Client) UserRecentMedia(ctx context.Context, token, userID string) (Document, error) {
	return c.get(ctx, token, userRecentMediaPath, userID)
}

// SearchUsers searches users by name.
func (c *Client) SearchUsers(ctx context.Context, token, query string) (Document, error) {
	return c.get(ctx, token, userSearchPath, query)
}

package instagram

import (
	"context"
	"net/url"
)

const mediaLikesPath = "media/%s/likes"

// Likes lists the users who liked a media object.
func (c *Client) Likes(ctx context.Context, token, mediaID string) (Document, error) {
	return c.get(ctx, token, mediaLikesPath, mediaID)
}

// Like sets a like on a media object for the token owner.
func (c *Client) Like(ctx context.Context, token, mediaID string) (Document, error) {
	form := url.Values{"access_token": {token}}
	return c.post(ctx, token, form, mediaLikesPath, mediaID)
}

// Unlike removes the token owner's like from a media object.
func (c *Client) Unlike(ctx context.Context, token, mediaID string) (Document, error) {
	return c.delete(ctx, token, mediaLikesPath, mediaID)
}

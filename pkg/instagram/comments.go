package instagram

import (
	"context"
	"net/url"
)

const (
	mediaCommentsPath = "media/%s/comments"
	mediaCommentPath  = "media/%s/comments/%s"
)

// Comments lists the comments on a media object.
func (c *Client) Comments(ctx context.Context, token, mediaID string) (Document, error) {
	return c.get(ctx, token, mediaCommentsPath, mediaID)
}

// CreateComment posts a comment. The text is checked with ValidateComment
// first and nothing is sent when it fails.
func (c *Client) CreateComment(ctx context.Context, token, mediaID, text string) (Document, error) {
	if err := ValidateComment(text); err != nil {
		return nil, err
	}
	form := url.Values{"text": {text}}
	return c.post(ctx, token, form, mediaCommentsPath, mediaID)
}

// DeleteComment removes a comment from a media object.
func (c *Client) DeleteComment(ctx context.Context, token, mediaID, commentID string) (Document, error) {
	return c.delete(ctx, token, mediaCommentPath, mediaID, commentID)
}

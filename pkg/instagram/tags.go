package instagram

import "context"

const (
	tagPath            = "tags/%s"
	tagRecentMediaPath = "tags/%s/media/recent"
	tagSearchPath      = "tags/search?q=%s"
)

// Tag returns information about a hashtag.
func (c *Client) Tag(ctx context.Context, token, tagName string) (Document, error) {
	return c.get(ctx, token, tagPath, tagName)
}

// TagRecentMedia returns recently tagged media.
func (c *Client) TagRecentMedia(ctx context.Context, token, tagName string) (Document, error) {
	return c.get(ctx, token, tagRecentMediaPath, tagName)
}

// SearchTags searches hashtags by name.
func (c *Client) SearchTags(ctx context.Context, token, query string) (Document, error) {
	return c.get(ctx, token, tagSearchPath, query)
}

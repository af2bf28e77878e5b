package instagram

import "context"

const (
	mediaPath          = "media/%s"
	mediaShortcodePath = "media/shortcode/%s"
	mediaSearchPath    = "media/search?lat=%s&lng=%s"
)

// Media returns a media object by ID.
func (c *Client) Media(ctx context.Context, token, mediaID string) (Document, error) {
	return c.get(ctx, token, mediaPath, mediaID)
}

// MediaByShortcode returns a media object by the shortcode in its web URL.
func (c *Client) MediaByShortcode(ctx context.Context, token, shortcode string) (Document, error) {
	return c.get(ctx, token, mediaShortcodePath, shortcode)
}

// SearchMedia searches recent media around a point. params may carry
// "distance" in meters.
func (c *Client) SearchMedia(ctx context.Context, token, lat, lng string, params Params) (Document, error) {
	return c.getWithParams(ctx, token, params, mediaSearchPath, lat, lng)
}

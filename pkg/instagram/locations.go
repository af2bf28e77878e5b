package instagram

import (
	"context"

	igerrors "igauth/pkg/errors"
)

const (
	locationPath            = "locations/%s"
	locationRecentMediaPath = "locations/%s/media/recent"
	locationSearchPath      = "locations/search"
)

// Location returns information about a location.
func (c *Client) Location(ctx context.Context, token, locationID string) (Document, error) {
	return c.get(ctx, token, locationPath, locationID)
}

// LocationRecentMedia returns recent media at a location. params may carry
// "min_id" and "max_id".
func (c *Client) LocationRecentMedia(ctx context.Context, token, locationID string, params Params) (Document, error) {
	return c.getWithParams(ctx, token, params, locationRecentMediaPath, locationID)
}

// SearchLocations searches locations. params must carry both "lat" and
// "lng", or "facebook_places_id".
func (c *Client) SearchLocations(ctx context.Context, token string, params Params) (Document, error) {
	p := params.nonEmpty()
	_, hasPlace := p["facebook_places_id"]
	_, hasLat := p["lat"]
	_, hasLng := p["lng"]
	if !hasPlace && (!hasLat || !hasLng) {
		return nil, igerrors.InvalidParameter("location search needs lat and lng, or facebook_places_id")
	}
	return c.getWithParams(ctx, token, p, locationSearchPath)
}

package instagram

import (
	"context"
	"net/url"

	igerrors "igauth/pkg/errors"
)

const (
	followsPath      = "users/self/follows"
	followedByPath   = "users/self/followed-by"
	requestedByPath  = "users/self/requested-by"
	relationshipPath = "users/%s/relationship"
)

// RelationshipAction is a change posted to users/{id}/relationship.
type RelationshipAction string

const (
	ActionFollow   RelationshipAction = "follow"
	ActionUnfollow RelationshipAction = "unfollow"
	ActionApprove  RelationshipAction = "approve"
	ActionIgnore   RelationshipAction = "ignore"
)

// Valid reports whether a is one of the accepted actions.
func (a RelationshipAction) Valid() bool {
	switch a {
	case ActionFollow, ActionUnfollow, ActionApprove, ActionIgnore:
		return true
	}
	return false
}

// Follows lists the users the token owner follows.
func (c *Client) Follows(ctx context.Context, token string) (Document, error) {
	return c.get(ctx, token, followsPath)
}

// FollowedBy lists the users following the token owner.
func (c *Client) FollowedBy(ctx context.Context, token string) (Document, error) {
	return c.get(ctx, token, followedByPath)
}

// RequestedBy lists the users who requested to follow the token owner.
func (c *Client) RequestedBy(ctx context.Context, token string) (Document, error) {
	return c.get(ctx, token, requestedByPath)
}

// Relationship returns the relationship between the token owner and a user.
func (c *Client) Relationship(ctx context.Context, token, userID string) (Document, error) {
	return c.get(ctx, token, relationshipPath, userID)
}

// ModifyRelationship applies action to the relationship with a user.
func (c *Client) ModifyRelationship(ctx context.Context, token, userID string, action RelationshipAction) (Document, error) {
	if !action.Valid() {
		return nil, igerrors.InvalidParameter("relationship action must be one of follow, unfollow, approve, ignore; got " + string(action))
	}
	form := url.Values{"action": {string(action)}}
	return c.post(ctx, token, form, relationshipPath, userID)
}

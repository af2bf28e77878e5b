package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"igauth/pkg/auth"
	"igauth/pkg/instagram"
	"igauth/pkg/logger"
)

var (
	apiToken  string
	apiUser   string
	apiParams []string
)

// endpointCall invokes one client method with positional args and params.
type endpointCall struct {
	args int
	use  string
	call func(ctx context.Context, c *instagram.Client, token string, args []string, p instagram.Params) (instagram.Document, error)
}

var endpoints = map[string]endpointCall{
	"users self-media": {0, "", func(ctx context.Context, c *instagram.Client, t string, _ []string, _ instagram.Params) (instagram.Document, error) {
		return c.MyRecentMedia(ctx, t)
	}},
	"users liked": {0, "", func(ctx context.Context, c *instagram.Client, t string, _ []string, _ instagram.Params) (instagram.Document, error) {
		return c.MyLikedMedia(ctx, t)
	}},
	"users get": {1, "<user-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.User(ctx, t, a[0])
	}},
	"users media": {1, "<user-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.UserRecentMedia(ctx, t, a[0])
	}},
	"users search": {1, "<query>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.SearchUsers(ctx, t, a[0])
	}},
	"relationships follows": {0, "", func(ctx context.Context, c *instagram.Client, t string, _ []string, _ instagram.Params) (instagram.Document, error) {
		return c.Follows(ctx, t)
	}},
	"relationships followed-by": {0, "", func(ctx context.Context, c *instagram.Client, t string, _ []string, _ instagram.Params) (instagram.Document, error) {
		return c.FollowedBy(ctx, t)
	}},
	"relationships requested-by": {0, "", func(ctx context.Context, c *instagram.Client, t string, _ []string, _ instagram.Params) (instagram.Document, error) {
		return c.RequestedBy(ctx, t)
	}},
	"relationships get": {1, "<user-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Relationship(ctx, t, a[0])
	}},
	"relationships modify": {2, "<user-id> <follow|unfollow|approve|ignore>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.ModifyRelationship(ctx, t, a[0], instagram.RelationshipAction(a[1]))
	}},
	"media get": {1, "<media-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Media(ctx, t, a[0])
	}},
	"media shortcode": {1, "<shortcode>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.MediaByShortcode(ctx, t, a[0])
	}},
	"media search": {2, "<lat> <lng>", func(ctx context.Context, c *instagram.Client, t string, a []string, p instagram.Params) (instagram.Document, error) {
		return c.SearchMedia(ctx, t, a[0], a[1], p)
	}},
	"likes list": {1, "<media-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Likes(ctx, t, a[0])
	}},
	"likes add": {1, "<media-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Like(ctx, t, a[0])
	}},
	"likes remove": {1, "<media-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Unlike(ctx, t, a[0])
	}},
	"comments list": {1, "<media-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Comments(ctx, t, a[0])
	}},
	"comments add": {2, "<media-id> <text>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.CreateComment(ctx, t, a[0], a[1])
	}},
	"comments remove": {2, "<media-id> <comment-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.DeleteComment(ctx, t, a[0], a[1])
	}},
	"tags get": {1, "<tag>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Tag(ctx, t, a[0])
	}},
	"tags media": {1, "<tag>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.TagRecentMedia(ctx, t, a[0])
	}},
	"tags search": {1, "<query>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.SearchTags(ctx, t, a[0])
	}},
	"locations get": {1, "<location-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, _ instagram.Params) (instagram.Document, error) {
		return c.Location(ctx, t, a[0])
	}},
	"locations media": {1, "<location-id>", func(ctx context.Context, c *instagram.Client, t string, a []string, p instagram.Params) (instagram.Document, error) {
		return c.LocationRecentMedia(ctx, t, a[0], p)
	}},
	"locations search": {0, "", func(ctx context.Context, c *instagram.Client, t string, _ []string, p instagram.Params) (instagram.Document, error) {
		return c.SearchLocations(ctx, t, p)
	}},
}

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api <resource> <action> [args...]",
	Short: "Call an Instagram REST endpoint",
	Long: "Call an Instagram REST endpoint with a stored or given access token and\n" +
		"print the JSON response.\n\nEndpoints:\n" + endpointUsage(),
	Example: `  igauth api users get 1574083
  igauth api tags media golang
  igauth api media search 48.858 2.294 --param distance=500
  igauth api locations search --param facebook_places_id=273471170716`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&apiToken, "token", "", "access token to use")
	apiCmd.Flags().StringVar(&apiUser, "user", "", "stored token to use")
	apiCmd.Flags().StringArrayVarP(&apiParams, "param", "p", nil, "extra query parameter as key=value (repeatable)")
	rootCmd.AddCommand(apiCmd)
}

func endpointUsage() string {
	names := make([]string, 0, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %s %s\n", name, endpoints[name].use)
	}
	return b.String()
}

// lookupEndpoint resolves "<resource> <action>" and checks the argument count.
func lookupEndpoint(args []string) (endpointCall, []string, error) {
	name := args[0] + " " + args[1]
	ep, ok := endpoints[name]
	if !ok {
		return endpointCall{}, nil, fmt.Errorf("unknown endpoint %q", name)
	}
	rest := args[2:]
	if len(rest) != ep.args {
		return endpointCall{}, nil, fmt.Errorf("%s expects %d argument(s): %s", name, ep.args, ep.use)
	}
	return ep, rest, nil
}

func runAPI(cmd *cobra.Command, args []string) error {
	ep, rest, err := lookupEndpoint(args)
	if err != nil {
		return err
	}
	params, err := parseParams(apiParams)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	manager, err := auth.NewManager(logger.GetLogger().WithField("component", "auth"))
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}
	token, err := resolveToken(manager, apiToken, apiUser)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := ep.call(ctx, newClient(cfg), token, rest, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

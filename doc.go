// Package relay turns a plain Go interface description into a live
// HTTP client.
//
// A caller describes each method of an interface with a [MethodSpec]:
// verb, path template, and the role each parameter plays (path
// variable, query parameter, header, form field, request body, or
// [Observer] sink). [New] parses those descriptions into a
// [MethodMetadata] table via a [Contract] and returns a [Client].
// Go's reflect package cannot synthesize an arbitrary interface
// implementation the way a dynamic proxy can, so Client exposes
// [Client.Invoke] — dispatch by method name — as its primitive, and
// cmd/relaygen generates the concrete, idiomatically-typed wrapper a
// caller actually imports and calls:
//
//	type GitHub interface {
//		Contributors(ctx context.Context, owner, repo string) ([]Contributor, error)
//	}
//
//	specs := map[string]*relay.MethodSpec{
//		"Contributors": relay.GET("/repos/{owner}/{repo}/contributors").
//			PathParam(1, "owner").
//			PathParam(2, "repo"),
//	}
//
//	client, err := relay.New[GitHub](relay.NewHardCodedTarget("https://api.github.com"), specs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	// github_relay.go, generated by cmd/relaygen from the GitHub interface
//	// above (shown here in condensed form):
//	//
//	//	func NewGitHub(c *relay.Client) GitHub { return &gitHubClient{c} }
//	//
//	//	func (g *gitHubClient) Contributors(ctx context.Context, owner, repo string) ([]Contributor, error) {
//	//		out := g.c.Invoke(ctx, "Contributors", owner, repo)
//	//		err, _ := out[1].(error)
//	//		contributors, _ := out[0].([]Contributor)
//	//		return contributors, err
//	//	}
//	gh := NewGitHub(client)
//	contributors, err := gh.Contributors(ctx, "golang", "go")
package relay

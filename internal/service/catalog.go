package service

import "github.com/fast-gateway-protocol/github/internal/schema"

// repoPattern accepts "owner/name" identifiers as GitHub spells them.
const repoPattern = `^[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+$`

// Helper constructors for schema nodes

func prop(name string, s *schema.Schema) schema.Property {
	return schema.Property{Name: name, Schema: s}
}

func objectOf(required []string, props ...schema.Property) *schema.Schema {
	return &schema.Schema{Kind: schema.KindObject, Properties: props, Required: required}
}

func stringProp(desc string) *schema.Schema {
	return &schema.Schema{Kind: schema.KindString, Description: desc}
}

func intProp(desc string) *schema.Schema {
	return &schema.Schema{Kind: schema.KindInteger, Description: desc}
}

func boolProp(desc string) *schema.Schema {
	return &schema.Schema{Kind: schema.KindBoolean, Description: desc}
}

func arrayOf(desc string, items *schema.Schema) *schema.Schema {
	return &schema.Schema{Kind: schema.KindArray, Description: desc, Items: items}
}

func repoProp() *schema.Schema {
	return &schema.Schema{
		Kind:        schema.KindString,
		Description: "Repository in owner/name format",
		Pattern:     repoPattern,
	}
}

func stateProp() *schema.Schema {
	return &schema.Schema{
		Kind:        schema.KindString,
		Description: "Filter by state",
		Enum:        []string{"open", "closed", "all"},
		Default:     "open",
	}
}

func limitProp() *schema.Schema {
	min, max := int64(1), int64(100)
	return &schema.Schema{
		Kind:        schema.KindInteger,
		Description: "Maximum number of results",
		Minimum:     &min,
		Maximum:     &max,
		Default:     int64(10),
	}
}

var providerErrors = []Code{CodeUnauthorized, CodeProviderUnavailable, CodeMalformedResponse}

func repoErrors() []Code {
	return append([]Code{CodeValidationFailed, CodeNotFound}, providerErrors...)
}

// buildCatalog declares every dispatchable method. Order here is the order
// discovery callers see.
func buildCatalog() []*Method {
	one, maxTitle := 1, 256
	minNumber := int64(1)

	return []*Method{
		{
			Name:        "user",
			Description: "Get the authenticated user's profile",
			Params:      objectOf(nil),
			Returns: objectOf(nil,
				prop("login", stringProp("Account login")),
				prop("name", stringProp("Display name")),
				prop("email", stringProp("Public email")),
				prop("url", stringProp("Profile URL")),
				prop("public_repos", intProp("Public repository count")),
				prop("followers", intProp("Follower count")),
				prop("following", intProp("Following count")),
			),
			Errors:   providerErrors,
			Examples: []Example{{Description: "Who am I", Params: map[string]any{}}},
			handler:  handleUser,
		},
		{
			Name:        "repos",
			Description: "List the authenticated user's repositories, most recently updated first",
			Params: objectOf(nil,
				prop("limit", limitProp()),
			),
			Returns: objectOf(nil,
				prop("repos", arrayOf("Repository summaries", objectOf(nil,
					prop("name", stringProp("Short name")),
					prop("full_name", stringProp("owner/name")),
					prop("url", stringProp("Repository URL")),
					prop("stargazers_count", intProp("Star count")),
				))),
				prop("count", intProp("Number of repositories returned")),
			),
			Errors: providerErrors,
			Examples: []Example{
				{Description: "Default page size", Params: map[string]any{}},
				{Description: "Five most recent", Params: map[string]any{"limit": int64(5)}},
			},
			handler: handleRepos,
		},
		{
			Name:        "issues",
			Description: "List issues in a repository",
			Params: objectOf([]string{"repo"},
				prop("repo", repoProp()),
				prop("state", stateProp()),
				prop("limit", limitProp()),
			),
			Returns: objectOf(nil,
				prop("repo", stringProp("Repository queried")),
				prop("state", stringProp("State filter applied")),
				prop("issues", arrayOf("Issue summaries", objectOf(nil,
					prop("number", intProp("Issue number")),
					prop("title", stringProp("Issue title")),
					prop("state", stringProp("open or closed")),
					prop("url", stringProp("Issue URL")),
				))),
				prop("count", intProp("Number of issues returned")),
			),
			Errors: repoErrors(),
			Examples: []Example{
				{Description: "Open issues", Params: map[string]any{"repo": "golang/go"}},
				{Description: "Recently closed", Params: map[string]any{"repo": "golang/go", "state": "closed", "limit": int64(5)}},
			},
			handler: handleIssues,
		},
		{
			Name:        "prs",
			Description: "List pull requests in a repository",
			Params: objectOf([]string{"repo"},
				prop("repo", repoProp()),
				prop("state", stateProp()),
				prop("limit", limitProp()),
			),
			Returns: objectOf(nil,
				prop("repo", stringProp("Repository queried")),
				prop("state", stringProp("State filter applied")),
				prop("prs", arrayOf("Pull request summaries", objectOf(nil,
					prop("number", intProp("Pull request number")),
					prop("title", stringProp("Pull request title")),
					prop("state", stringProp("open or closed")),
					prop("url", stringProp("Pull request URL")),
				))),
				prop("count", intProp("Number of pull requests returned")),
			),
			Errors: repoErrors(),
			Examples: []Example{
				{Description: "Open pull requests", Params: map[string]any{"repo": "golang/go"}},
			},
			handler: handlePRs,
		},
		{
			Name:        "pr",
			Description: "Get a pull request with its reviews and status checks",
			Params: objectOf([]string{"repo", "number"},
				prop("repo", repoProp()),
				prop("number", &schema.Schema{
					Kind:        schema.KindInteger,
					Description: "Pull request number",
					Minimum:     &minNumber,
				}),
			),
			Returns: objectOf(nil,
				prop("repo", stringProp("Repository queried")),
				prop("pr", objectOf(nil,
					prop("number", intProp("Pull request number")),
					prop("title", stringProp("Pull request title")),
					prop("reviews", arrayOf("Reviews", objectOf(nil,
						prop("author", stringProp("Reviewer login")),
						prop("state", stringProp("Review verdict")),
					))),
					prop("status_checks", arrayOf("Head commit checks", objectOf(nil,
						prop("name", stringProp("Check name")),
						prop("status", stringProp("Check state")),
					))),
				)),
			),
			Errors: repoErrors(),
			Examples: []Example{
				{Description: "Inspect a pull request", Params: map[string]any{"repo": "golang/go", "number": int64(12345)}},
			},
			handler: handlePR,
		},
		{
			Name:        "pr_status",
			Description: "Check whether a branch has an open pull request",
			Params: objectOf([]string{"repo"},
				prop("repo", repoProp()),
				prop("branch", stringProp("Head branch; omit for the most recent open pull request")),
			),
			Returns: objectOf(nil,
				prop("has_pr", boolProp("Whether an open pull request exists")),
				prop("repo", stringProp("Repository queried")),
				prop("message", stringProp("Explanation when no pull request exists")),
			),
			Errors: repoErrors(),
			Examples: []Example{
				{Description: "Status of a feature branch", Params: map[string]any{"repo": "golang/go", "branch": "dev.boringcrypto"}},
			},
			handler: handlePRStatus,
		},
		{
			Name:        "notifications",
			Description: "List unread notifications for the authenticated user",
			Params:      objectOf(nil),
			Returns: objectOf(nil,
				prop("notifications", arrayOf("Notification entries", objectOf(nil,
					prop("reason", stringProp("Why the notification was sent")),
					prop("title", stringProp("Subject title")),
					prop("repo", stringProp("Source repository")),
				))),
				prop("unread_count", intProp("Number of unread notifications")),
			),
			Errors:   providerErrors,
			Examples: []Example{{Description: "Inbox", Params: map[string]any{}}},
			handler:  handleNotifications,
		},
		{
			Name:        "create_issue",
			Description: "Open a new issue in a repository",
			Params: objectOf([]string{"repo", "title"},
				prop("repo", repoProp()),
				prop("title", &schema.Schema{
					Kind:        schema.KindString,
					Description: "Issue title",
					MinLength:   &one,
					MaxLength:   &maxTitle,
				}),
				prop("body", stringProp("Issue body in Markdown")),
			),
			Returns: objectOf(nil,
				prop("created", boolProp("Always true on success")),
				prop("issue", objectOf(nil,
					prop("number", intProp("Issue number")),
					prop("url", stringProp("Issue URL")),
				)),
			),
			Errors: repoErrors(),
			Examples: []Example{
				{Description: "File a bug", Params: map[string]any{
					"repo":  "golang/go",
					"title": "crash on startup",
					"body":  "stack trace attached",
				}},
			},
			handler: handleCreateIssue,
		},
		{
			Name:        "health",
			Description: "Probe connectivity to the GitHub API",
			Params:      objectOf(nil),
			Returns: objectOf(nil,
				prop("status", stringProp("healthy or unhealthy")),
				prop("api_connected", boolProp("Whether the API answered")),
				prop("version", stringProp("Daemon version")),
			),
			Errors:   nil,
			Examples: []Example{{Description: "Liveness probe", Params: map[string]any{}}},
			handler:  handleHealth,
		},
	}
}

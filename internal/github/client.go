package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/fast-gateway-protocol/github/internal/logging"
)

// Client is an authenticated GitHub API client covering the REST endpoints
// the service dispatches to, plus a GraphQL viewer probe.
type Client struct {
	http       *http.Client
	apiBase    string
	graphqlURL string
	log        *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides the REST and GraphQL endpoints. Used for GitHub
// Enterprise hosts and for tests.
func WithBaseURLs(apiBase, graphqlURL string) Option {
	return func(c *Client) {
		c.apiBase = apiBase
		c.graphqlURL = graphqlURL
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient creates a client that authenticates every request with the
// given token.
func NewClient(token string, log *logging.Logger, opts ...Option) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 30 * time.Second

	c := &Client{
		http:       httpClient,
		apiBase:    "https://api.github.com",
		graphqlURL: "https://api.github.com/graphql",
		log:        log.Sub("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping verifies the token against the GraphQL API and returns the viewer
// login. An empty login with a nil error means the API answered but the
// token resolved to no account.
func (c *Client) Ping(ctx context.Context) (string, error) {
	body := map[string]string{"query": "query { viewer { login } }"}
	var out struct {
		Data struct {
			Viewer struct {
				Login string `json:"login"`
			} `json:"viewer"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, c.graphqlURL, body, &out); err != nil {
		return "", err
	}
	return out.Data.Viewer.Login, nil
}

// GetUser fetches the authenticated user's profile.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var raw ghUser
	if err := c.get(ctx, "/user", nil, &raw); err != nil {
		return nil, err
	}
	return raw.toUser(), nil
}

// ListRepos lists the authenticated user's repositories, most recently
// updated first.
func (c *Client) ListRepos(ctx context.Context, limit int) ([]Repo, error) {
	q := url.Values{
		"per_page": {strconv.Itoa(limit)},
		"sort":     {"updated"},
	}
	var raw []ghRepo
	if err := c.get(ctx, "/user/repos", q, &raw); err != nil {
		return nil, err
	}
	repos := make([]Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, r.toRepo())
	}
	return repos, nil
}

// ListIssues lists issues in a repository. GitHub's issues endpoint also
// returns pull requests; those are filtered out.
func (c *Client) ListIssues(ctx context.Context, owner, repo, state string, limit int) ([]Issue, error) {
	q := url.Values{
		"state":    {state},
		"per_page": {strconv.Itoa(limit)},
	}
	var raw []ghIssue
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/issues", owner, repo), q, &raw); err != nil {
		return nil, err
	}
	issues := make([]Issue, 0, len(raw))
	for _, i := range raw {
		if i.PullRequest != nil {
			continue
		}
		issues = append(issues, i.toIssue())
	}
	return issues, nil
}

// ListPullRequests lists pull requests in a repository.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string, limit int) ([]PullRequest, error) {
	q := url.Values{
		"state":    {state},
		"per_page": {strconv.Itoa(limit)},
	}
	var raw []ghPull
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), q, &raw); err != nil {
		return nil, err
	}
	pulls := make([]PullRequest, 0, len(raw))
	for _, p := range raw {
		pulls = append(pulls, p.toPullRequest())
	}
	return pulls, nil
}

// GetPullRequest fetches a pull request with its reviews and the combined
// status of its head commit.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestDetail, error) {
	var raw ghPull
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), nil, &raw); err != nil {
		return nil, err
	}

	detail := &PullRequestDetail{
		PullRequest: raw.toPullRequest(),
		Body:        raw.Body,
		Mergeable:   raw.Mergeable,
		Reviews:     []Review{},
		Checks:      []StatusCheck{},
	}

	var reviews []ghReview
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", owner, repo, number), nil, &reviews); err != nil {
		return nil, err
	}
	for _, r := range reviews {
		detail.Reviews = append(detail.Reviews, Review{
			Author:      r.User.Login,
			State:       r.State,
			SubmittedAt: r.SubmittedAt,
		})
	}

	if raw.Head.SHA != "" {
		var status ghCombinedStatus
		if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/commits/%s/status", owner, repo, raw.Head.SHA), nil, &status); err != nil {
			return nil, err
		}
		for _, s := range status.Statuses {
			detail.Checks = append(detail.Checks, StatusCheck{Name: s.Context, Status: s.State})
		}
	}

	return detail, nil
}

// FindBranchPR returns the open pull request for the given head branch, or
// nil if the branch has none. An empty branch returns the most recently
// created open pull request in the repository, or nil if there is none.
func (c *Client) FindBranchPR(ctx context.Context, owner, repo, branch string) (*PullRequestDetail, error) {
	q := url.Values{"state": {"open"}, "per_page": {"1"}}
	if branch != "" {
		q.Set("head", owner+":"+branch)
	}
	var raw []ghPull
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), q, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return c.GetPullRequest(ctx, owner, repo, raw[0].Number)
}

// Notifications lists the authenticated user's unread notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var raw []ghNotification
	if err := c.get(ctx, "/notifications", nil, &raw); err != nil {
		return nil, err
	}
	notes := make([]Notification, 0, len(raw))
	for _, n := range raw {
		notes = append(notes, Notification{
			ID:        n.ID,
			Reason:    n.Reason,
			Unread:    n.Unread,
			Title:     n.Subject.Title,
			Type:      n.Subject.Type,
			Repo:      n.Repository.FullName,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return notes, nil
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, owner, repo, title, body string) (*Issue, error) {
	payload := map[string]string{"title": title}
	if body != "" {
		payload["body"] = body
	}
	var raw ghIssue
	if err := c.do(ctx, http.MethodPost, c.restURL(fmt.Sprintf("/repos/%s/%s/issues", owner, repo), nil), payload, &raw); err != nil {
		return nil, err
	}
	issue := raw.toIssue()
	return &issue, nil
}

// ---- HTTP plumbing ----

func (c *Client) restURL(path string, q url.Values) string {
	u := c.apiBase + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.restURL(path, q)
	err := c.do(ctx, http.MethodGet, u, nil, out)
	// A single retry for transient gateway errors on idempotent requests.
	if apiErr, ok := err.(*APIError); ok && apiErr.Kind == KindUnavailable &&
		(apiErr.Status == http.StatusBadGateway || apiErr.Status == http.StatusServiceUnavailable) {
		c.log.Debug().Int("status", apiErr.Status).Str("url", u).Msg("retrying transient error")
		return c.do(ctx, http.MethodGet, u, nil, out)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindUnavailable, Status: resp.StatusCode, Message: err.Error()}
	}

	c.log.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &APIError{
				Kind:    KindMalformed,
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("failed to parse response: %v", err),
			}
		}
	}
	return nil
}

// classifyStatus maps an error response to an APIError, carrying GitHub's
// own message when the body has one.
func classifyStatus(status int, body []byte) *APIError {
	msg := http.StatusText(status)
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		msg = parsed.Message
	}

	kind := KindUnavailable
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	default:
		// Everything else, rate limits and validation rejections
		// included, is the provider refusing service. Malformed is
		// reserved for bodies we cannot interpret.
		kind = KindUnavailable
	}
	return &APIError{Kind: kind, Status: status, Message: msg}
}

// ---- wire types ----

type ghUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	HTMLURL     string `json:"html_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

func (u ghUser) toUser() *User {
	return &User{
		Login:       u.Login,
		Name:        u.Name,
		Email:       u.Email,
		URL:         u.HTMLURL,
		PublicRepos: u.PublicRepos,
		Followers:   u.Followers,
		Following:   u.Following,
	}
}

type ghRepo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Private     bool   `json:"private"`
	Stars       int    `json:"stargazers_count"`
	Language    string `json:"language"`
	UpdatedAt   string `json:"updated_at"`
}

func (r ghRepo) toRepo() Repo {
	return Repo{
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		URL:         r.HTMLURL,
		Private:     r.Private,
		Stars:       r.Stars,
		Language:    r.Language,
		UpdatedAt:   r.UpdatedAt,
	}
}

type ghIssue struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	State       string    `json:"state"`
	User        ghAccount `json:"user"`
	Labels      []ghLabel `json:"labels"`
	CreatedAt   string    `json:"created_at"`
	HTMLURL     string    `json:"html_url"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type ghAccount struct {
	Login string `json:"login"`
}

type ghLabel struct {
	Name string `json:"name"`
}

func (i ghIssue) toIssue() Issue {
	var labels []string
	for _, l := range i.Labels {
		labels = append(labels, l.Name)
	}
	return Issue{
		Number:    i.Number,
		Title:     i.Title,
		State:     i.State,
		Author:    i.User.Login,
		Labels:    labels,
		CreatedAt: i.CreatedAt,
		URL:       i.HTMLURL,
	}
}

type ghPull struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Body      string    `json:"body"`
	User      ghAccount `json:"user"`
	Draft     bool      `json:"draft"`
	Mergeable *bool     `json:"mergeable"`
	Head      ghRef     `json:"head"`
	Base      ghRef     `json:"base"`
	CreatedAt string    `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
}

type ghRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

func (p ghPull) toPullRequest() PullRequest {
	return PullRequest{
		Number:    p.Number,
		Title:     p.Title,
		State:     p.State,
		Author:    p.User.Login,
		Draft:     p.Draft,
		HeadRef:   p.Head.Ref,
		BaseRef:   p.Base.Ref,
		CreatedAt: p.CreatedAt,
		URL:       p.HTMLURL,
	}
}

type ghReview struct {
	User        ghAccount `json:"user"`
	State       string    `json:"state"`
	SubmittedAt string    `json:"submitted_at"`
}

type ghCombinedStatus struct {
	State    string     `json:"state"`
	Statuses []ghStatus `json:"statuses"`
}

type ghStatus struct {
	Context string `json:"context"`
	State   string `json:"state"`
}

type ghNotification struct {
	ID      string `json:"id"`
	Reason  string `json:"reason"`
	Unread  bool   `json:"unread"`
	Subject struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"subject"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	UpdatedAt string `json:"updated_at"`
}

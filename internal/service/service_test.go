package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fast-gateway-protocol/github/internal/github"
	"github.com/fast-gateway-protocol/github/internal/logging"
)

// fakeAPI records every provider call so tests can assert what reached the
// network layer and with what arguments.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	pingLogin string
	user      *github.User
	repos     []github.Repo
	issues    []github.Issue
	prs       []github.PullRequest
	pr        *github.PullRequestDetail
	branchPR  *github.PullRequestDetail
	notes     []github.Notification
	created   *github.Issue

	lastState string
	lastLimit int
	err       error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) Ping(ctx context.Context) (string, error) {
	f.record("ping")
	return f.pingLogin, f.err
}

func (f *fakeAPI) GetUser(ctx context.Context) (*github.User, error) {
	f.record("user")
	return f.user, f.err
}

func (f *fakeAPI) ListRepos(ctx context.Context, limit int) ([]github.Repo, error) {
	f.record("repos")
	f.lastLimit = limit
	return f.repos, f.err
}

func (f *fakeAPI) ListIssues(ctx context.Context, owner, repo, state string, limit int) ([]github.Issue, error) {
	f.record("issues")
	f.lastState, f.lastLimit = state, limit
	return f.issues, f.err
}

func (f *fakeAPI) ListPullRequests(ctx context.Context, owner, repo, state string, limit int) ([]github.PullRequest, error) {
	f.record("prs")
	f.lastState, f.lastLimit = state, limit
	return f.prs, f.err
}

func (f *fakeAPI) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequestDetail, error) {
	f.record("pr")
	return f.pr, f.err
}

func (f *fakeAPI) FindBranchPR(ctx context.Context, owner, repo, branch string) (*github.PullRequestDetail, error) {
	f.record("branch_pr")
	return f.branchPR, f.err
}

func (f *fakeAPI) Notifications(ctx context.Context) ([]github.Notification, error) {
	f.record("notifications")
	return f.notes, f.err
}

func (f *fakeAPI) CreateIssue(ctx context.Context, owner, repo, title, body string) (*github.Issue, error) {
	f.record("create_issue")
	return f.created, f.err
}

func newTestService(t *testing.T, api *fakeAPI) *Service {
	t.Helper()
	log := logging.New(io.Discard, "silent", "json")
	svc, err := New(api, "github", 2, 8, log)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestNewVerifiesCatalog(t *testing.T) {
	svc := newTestService(t, &fakeAPI{})
	assert.NotEmpty(t, svc.Methods())
	for _, m := range svc.Methods() {
		assert.NotEmpty(t, m.Description, "method %s has no description", m.Name)
	}
}

func TestLookupAlias(t *testing.T) {
	svc := newTestService(t, &fakeAPI{})

	short, ok := svc.Lookup("repos")
	require.True(t, ok)
	qualified, ok := svc.Lookup("github.repos")
	require.True(t, ok)
	assert.Same(t, short, qualified)

	_, ok = svc.Lookup("gitlab.repos")
	assert.False(t, ok)
}

func TestDispatchUnknownMethod(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	_, err := svc.Dispatch("teleport", nil)
	require.NotNil(t, err)
	assert.Equal(t, CodeUnknownMethod, err.Code)
	assert.Zero(t, api.callCount())
}

func TestDispatchValidationStopsBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	_, err := svc.Dispatch("issues", map[string]any{"repo": "not a repo id"})
	require.NotNil(t, err)
	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Zero(t, api.callCount())

	_, err = svc.Dispatch("issues", map[string]any{"repo": "golang/go", "limit": float64(0)})
	require.NotNil(t, err)
	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Zero(t, api.callCount())
}

func TestDispatchUser(t *testing.T) {
	api := &fakeAPI{user: &github.User{Login: "octocat", PublicRepos: 8}}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("user", nil)
	require.Nil(t, err)
	user, ok := out.(*github.User)
	require.True(t, ok)
	assert.Equal(t, "octocat", user.Login)
}

func TestDispatchIssuesAppliesDefaults(t *testing.T) {
	api := &fakeAPI{issues: []github.Issue{{Number: 7, Title: "flaky test"}}}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("issues", map[string]any{"repo": "golang/go"})
	require.Nil(t, err)
	assert.Equal(t, "open", api.lastState)
	assert.Equal(t, 10, api.lastLimit)

	env, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "golang/go", env["repo"])
	assert.Equal(t, "open", env["state"])
	assert.Equal(t, 1, env["count"])
}

func TestDispatchQualifiedNameEquivalent(t *testing.T) {
	api := &fakeAPI{repos: []github.Repo{{FullName: "golang/go"}}}
	svc := newTestService(t, api)

	shortOut, err := svc.Dispatch("repos", map[string]any{"limit": float64(3)})
	require.Nil(t, err)
	qualOut, err := svc.Dispatch("github.repos", map[string]any{"limit": float64(3)})
	require.Nil(t, err)
	assert.Equal(t, shortOut, qualOut)
	assert.Equal(t, 3, api.lastLimit)
}

func TestDispatchPRStatusNoBranchPR(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("pr_status", map[string]any{"repo": "golang/go", "branch": "orphan"})
	require.Nil(t, err)
	env, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, env["has_pr"])
	assert.NotEmpty(t, env["message"])
	assert.NotContains(t, env, "pr")
}

func TestDispatchPRStatusFound(t *testing.T) {
	detail := &github.PullRequestDetail{
		PullRequest: github.PullRequest{Number: 99, Title: "speed up parser"},
		Reviews:     []github.Review{},
		Checks:      []github.StatusCheck{},
	}
	api := &fakeAPI{branchPR: detail}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("pr_status", map[string]any{"repo": "golang/go", "branch": "parser"})
	require.Nil(t, err)
	env := out.(map[string]any)
	assert.Equal(t, true, env["has_pr"])
	assert.Same(t, detail, env["pr"])
}

func TestDispatchCreateIssue(t *testing.T) {
	api := &fakeAPI{created: &github.Issue{Number: 101, Title: "crash on startup"}}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("create_issue", map[string]any{
		"repo":  "golang/go",
		"title": "crash on startup",
		"body":  "stack trace attached",
	})
	require.Nil(t, err)
	env := out.(map[string]any)
	assert.Equal(t, true, env["created"])
	assert.Same(t, api.created, env["issue"])
}

func TestDispatchCreateIssueEmptyTitle(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	_, err := svc.Dispatch("create_issue", map[string]any{"repo": "golang/go", "title": ""})
	require.NotNil(t, err)
	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Zero(t, api.callCount())
}

func TestDispatchNotificationsUnreadCount(t *testing.T) {
	api := &fakeAPI{notes: []github.Notification{
		{ID: "1", Unread: true},
		{ID: "2", Unread: false},
		{ID: "3", Unread: true},
	}}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("notifications", nil)
	require.Nil(t, err)
	env := out.(map[string]any)
	assert.Equal(t, 2, env["unread_count"])
}

func TestDispatchMapsProviderErrors(t *testing.T) {
	cases := []struct {
		kind github.ErrorKind
		want Code
	}{
		{github.KindUnauthorized, CodeUnauthorized},
		{github.KindNotFound, CodeNotFound},
		{github.KindMalformed, CodeMalformedResponse},
		{github.KindUnavailable, CodeProviderUnavailable},
	}
	for _, tc := range cases {
		api := &fakeAPI{err: &github.APIError{Kind: tc.kind, Status: 400, Message: "bad credentials"}}
		svc := newTestService(t, api)

		_, err := svc.Dispatch("user", nil)
		require.NotNil(t, err)
		assert.Equal(t, tc.want, err.Code)
		assert.Contains(t, err.Message, "bad credentials")
	}
}

func TestDispatchHealthUnhealthy(t *testing.T) {
	api := &fakeAPI{err: &github.APIError{Kind: github.KindUnavailable, Status: 503, Message: "down"}}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("health", nil)
	require.Nil(t, err)
	env := out.(map[string]any)
	assert.Equal(t, "unhealthy", env["status"])
	assert.Equal(t, false, env["api_connected"])
}

func TestDispatchPRMissingNumber(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	_, err := svc.Dispatch("pr", map[string]any{"repo": "acme/widgets"})
	require.NotNil(t, err)
	assert.Equal(t, CodeValidationFailed, err.Code)
	assert.Contains(t, err.Message, "number")
	assert.Zero(t, api.callCount())
}

func TestDispatchHealthEmptyLogin(t *testing.T) {
	svc := newTestService(t, &fakeAPI{})

	out, err := svc.Dispatch("health", nil)
	require.Nil(t, err)
	env := out.(map[string]any)
	assert.Equal(t, "healthy", env["status"])
}

func TestDispatchHealthHealthy(t *testing.T) {
	api := &fakeAPI{pingLogin: "octocat"}
	svc := newTestService(t, api)

	out, err := svc.Dispatch("health", nil)
	require.Nil(t, err)
	env := out.(map[string]any)
	assert.Equal(t, "healthy", env["status"])
	assert.Equal(t, true, env["api_connected"])
}

func TestOnStart(t *testing.T) {
	svc := newTestService(t, &fakeAPI{pingLogin: "octocat"})
	assert.NoError(t, svc.OnStart(context.Background()))
}

func TestOnStartUnreachable(t *testing.T) {
	api := &fakeAPI{err: &github.APIError{Kind: github.KindUnavailable, Status: 502, Message: "bad gateway"}}
	svc := newTestService(t, api)
	assert.Error(t, svc.OnStart(context.Background()))
}

func TestHealthCheck(t *testing.T) {
	svc := newTestService(t, &fakeAPI{pingLogin: "octocat"})
	report := svc.HealthCheck()
	require.Contains(t, report, "github_api")
	assert.True(t, report["github_api"].Healthy)
}

func TestHealthCheckFailure(t *testing.T) {
	api := &fakeAPI{err: &github.APIError{Kind: github.KindUnavailable, Status: 503, Message: "down"}}
	svc := newTestService(t, api)
	report := svc.HealthCheck()
	assert.False(t, report["github_api"].Healthy)
	assert.NotEmpty(t, report["github_api"].Error)
}

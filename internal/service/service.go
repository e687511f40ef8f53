// Package service routes named operations to the GitHub API client. It owns
// the method catalog, parameter validation, and the sync-async bridge that
// bounds concurrent provider calls.
package service

import (
	"context"
	"fmt"

	"github.com/fast-gateway-protocol/github/internal/github"
	"github.com/fast-gateway-protocol/github/internal/logging"
	"github.com/fast-gateway-protocol/github/internal/schema"
)

// API is the provider surface the dispatcher calls. *github.Client
// implements it; tests substitute fakes.
type API interface {
	Ping(ctx context.Context) (string, error)
	GetUser(ctx context.Context) (*github.User, error)
	ListRepos(ctx context.Context, limit int) ([]github.Repo, error)
	ListIssues(ctx context.Context, owner, repo, state string, limit int) ([]github.Issue, error)
	ListPullRequests(ctx context.Context, owner, repo, state string, limit int) ([]github.PullRequest, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequestDetail, error)
	FindBranchPR(ctx context.Context, owner, repo, branch string) (*github.PullRequestDetail, error)
	Notifications(ctx context.Context) ([]github.Notification, error)
	CreateIssue(ctx context.Context, owner, repo, title, body string) (*github.Issue, error)
}

type Service struct {
	api     API
	log     *logging.Logger
	bridge  *Bridge
	name    string
	methods []*Method
	index   map[string]*Method
}

// New builds a Service over the given provider. The catalog is verified at
// construction: a schema that fails its own Check or an example that fails
// validation is a programming error and aborts startup.
func New(api API, name string, workers, queueSize int, log *logging.Logger) (*Service, error) {
	methods := buildCatalog()
	index := make(map[string]*Method, len(methods)*2)
	for _, m := range methods {
		if err := m.Params.Check(); err != nil {
			return nil, fmt.Errorf("method %s: invalid params schema: %w", m.Name, err)
		}
		if m.Returns != nil {
			if err := m.Returns.Check(); err != nil {
				return nil, fmt.Errorf("method %s: invalid returns schema: %w", m.Name, err)
			}
		}
		for i, ex := range m.Examples {
			if _, verr := schema.Validate(m.Params, ex.Params); verr != nil {
				return nil, fmt.Errorf("method %s: example %d does not validate: %s", m.Name, i, verr.Message)
			}
		}
		if _, dup := index[m.Name]; dup {
			return nil, fmt.Errorf("duplicate method %s", m.Name)
		}
		index[m.Name] = m
		index[name+"."+m.Name] = m
	}
	return &Service{
		api:     api,
		log:     log.Sub("service"),
		bridge:  newBridge(workers, queueSize),
		name:    name,
		methods: methods,
		index:   index,
	}, nil
}

// Name returns the service name used as the method alias prefix.
func (s *Service) Name() string {
	return s.name
}

// Methods returns the catalog in declaration order.
func (s *Service) Methods() []*Method {
	return s.methods
}

// Lookup resolves a short or qualified method name.
func (s *Service) Lookup(name string) (*Method, bool) {
	m, ok := s.index[name]
	return m, ok
}

// Dispatch validates params against the method's schema and runs the handler
// through the bridge. Validation failures never reach the network.
func (s *Service) Dispatch(method string, params map[string]any) (any, *Error) {
	m, ok := s.index[method]
	if !ok {
		return nil, Errorf(CodeUnknownMethod, "unknown method %q", method)
	}
	bag, verr := schema.Validate(m.Params, params)
	if verr != nil {
		return nil, Errorf(CodeValidationFailed, "%s: %s", verr.Field, verr.Message)
	}
	out, err := s.bridge.Do(func(ctx context.Context) (any, error) {
		return m.handler(ctx, s, bag)
	})
	if err != nil {
		serr := asServiceError(err)
		s.log.Warn().
			Str("method", m.Name).
			Str("code", string(serr.Code)).
			Str("error", serr.Message).
			Msg("method failed")
		return nil, serr
	}
	return out, nil
}

// OnStart verifies credentials before the daemon accepts connections. A
// transport failure is fatal; an empty login only warns, since some token
// scopes hide the viewer.
func (s *Service) OnStart(ctx context.Context) error {
	login, err := s.api.Ping(ctx)
	if err != nil {
		return fmt.Errorf("github api unreachable: %w", err)
	}
	if login == "" {
		s.log.Warn().Msg("authenticated ping returned no login; token scopes may be limited")
	} else {
		s.log.Info().Str("login", login).Msg("github api ready")
	}
	return nil
}

// Close stops the bridge, failing any queued work.
func (s *Service) Close() {
	s.bridge.Close()
	s.log.Debug().Msg("service stopped")
}

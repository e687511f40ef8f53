package service

import (
	"context"

	"github.com/fast-gateway-protocol/github/internal/version"
)

// Param accessors assume the bag has already been normalized by the
// validator, so type assertions here are safe for declared parameters.

func strArg(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func intArg(params map[string]any, key string) int {
	v, _ := params[key].(int64)
	return int(v)
}

func handleUser(ctx context.Context, s *Service, _ map[string]any) (any, error) {
	user, err := s.api.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func handleRepos(ctx context.Context, s *Service, params map[string]any) (any, error) {
	repos, err := s.api.ListRepos(ctx, intArg(params, "limit"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"repos": repos,
		"count": len(repos),
	}, nil
}

func handleIssues(ctx context.Context, s *Service, params map[string]any) (any, error) {
	repo := strArg(params, "repo")
	owner, name, perr := ParseRepoID(repo)
	if perr != nil {
		return nil, perr
	}
	state := strArg(params, "state")
	issues, err := s.api.ListIssues(ctx, owner, name, state, intArg(params, "limit"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"repo":   repo,
		"state":  state,
		"issues": issues,
		"count":  len(issues),
	}, nil
}

func handlePRs(ctx context.Context, s *Service, params map[string]any) (any, error) {
	repo := strArg(params, "repo")
	owner, name, perr := ParseRepoID(repo)
	if perr != nil {
		return nil, perr
	}
	state := strArg(params, "state")
	prs, err := s.api.ListPullRequests(ctx, owner, name, state, intArg(params, "limit"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"repo":  repo,
		"state": state,
		"prs":   prs,
		"count": len(prs),
	}, nil
}

func handlePR(ctx context.Context, s *Service, params map[string]any) (any, error) {
	repo := strArg(params, "repo")
	owner, name, perr := ParseRepoID(repo)
	if perr != nil {
		return nil, perr
	}
	pr, err := s.api.GetPullRequest(ctx, owner, name, intArg(params, "number"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"repo": repo,
		"pr":   pr,
	}, nil
}

func handlePRStatus(ctx context.Context, s *Service, params map[string]any) (any, error) {
	repo := strArg(params, "repo")
	owner, name, perr := ParseRepoID(repo)
	if perr != nil {
		return nil, perr
	}
	pr, err := s.api.FindBranchPR(ctx, owner, name, strArg(params, "branch"))
	if err != nil {
		return nil, err
	}
	if pr == nil {
		// A branch without a pull request is an answer, not a failure.
		return map[string]any{
			"has_pr":  false,
			"repo":    repo,
			"message": "no open pull request",
		}, nil
	}
	return map[string]any{
		"has_pr": true,
		"repo":   repo,
		"pr":     pr,
	}, nil
}

func handleNotifications(ctx context.Context, s *Service, _ map[string]any) (any, error) {
	notes, err := s.api.Notifications(ctx)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, n := range notes {
		if n.Unread {
			unread++
		}
	}
	return map[string]any{
		"notifications": notes,
		"unread_count":  unread,
	}, nil
}

func handleCreateIssue(ctx context.Context, s *Service, params map[string]any) (any, error) {
	repo := strArg(params, "repo")
	owner, name, perr := ParseRepoID(repo)
	if perr != nil {
		return nil, perr
	}
	issue, err := s.api.CreateIssue(ctx, owner, name, strArg(params, "title"), strArg(params, "body"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"created": true,
		"issue":   issue,
	}, nil
}

func handleHealth(ctx context.Context, s *Service, _ map[string]any) (any, error) {
	status := "healthy"
	connected := true
	if _, err := s.api.Ping(ctx); err != nil {
		status = "unhealthy"
		connected = false
	}
	return map[string]any{
		"status":        status,
		"api_connected": connected,
		"version":       version.Version,
	}, nil
}

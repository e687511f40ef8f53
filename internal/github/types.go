package github

// User is the authenticated GitHub account.
type User struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	URL         string `json:"url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// Repo is a repository summary as returned by list operations.
type Repo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Private     bool   `json:"private"`
	Stars       int    `json:"stargazers_count"`
	Language    string `json:"language,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

// Issue is an issue summary. Pull requests are never reported as issues.
type Issue struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	Author    string   `json:"author"`
	Labels    []string `json:"labels,omitempty"`
	CreatedAt string   `json:"created_at"`
	URL       string   `json:"url"`
}

// PullRequest is a pull request summary.
type PullRequest struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Author    string `json:"author"`
	Draft     bool   `json:"draft"`
	HeadRef   string `json:"head_ref"`
	BaseRef   string `json:"base_ref"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
}

// Review is a single pull request review.
type Review struct {
	Author      string `json:"author"`
	State       string `json:"state"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

// StatusCheck is one entry of a commit's combined status.
type StatusCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// PullRequestDetail is a pull request with its reviews and head commit checks.
type PullRequestDetail struct {
	PullRequest
	Body      string        `json:"body,omitempty"`
	Mergeable *bool         `json:"mergeable,omitempty"`
	Reviews   []Review      `json:"reviews"`
	Checks    []StatusCheck `json:"status_checks"`
}

// Notification is an entry from the authenticated user's notification inbox.
type Notification struct {
	ID        string `json:"id"`
	Reason    string `json:"reason"`
	Unread    bool   `json:"unread"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Repo      string `json:"repo"`
	UpdatedAt string `json:"updated_at"`
}

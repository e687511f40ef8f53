package github

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoToken is returned when no credential source yields a token.
var ErrNoToken = errors.New("no GitHub token found: set github.token in the config, GITHUB_TOKEN, GH_TOKEN, or log in with the gh CLI")

// ResolveToken finds a GitHub token. Sources are tried in order: the
// explicit config value, GITHUB_TOKEN, GH_TOKEN, and finally the gh CLI's
// hosts file.
func ResolveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		return v, nil
	}
	if v := os.Getenv("GH_TOKEN"); v != "" {
		return v, nil
	}
	if v := tokenFromHostsFile(); v != "" {
		return v, nil
	}
	return "", ErrNoToken
}

// hostEntry is the per-host record in the gh CLI's hosts.yml.
type hostEntry struct {
	OauthToken string `yaml:"oauth_token"`
	User       string `yaml:"user"`
}

// tokenFromHostsFile reads the github.com token written by `gh auth login`.
// Returns empty on any failure; a broken hosts file is not an error here.
func tokenFromHostsFile() string {
	dir := os.Getenv("GH_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config", "gh")
	}

	data, err := os.ReadFile(filepath.Join(dir, "hosts.yml"))
	if err != nil {
		return ""
	}

	var hosts map[string]hostEntry
	if err := yaml.Unmarshal(data, &hosts); err != nil {
		return ""
	}
	return hosts["github.com"].OauthToken
}

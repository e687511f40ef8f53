package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".fgp"

// Paths holds resolved filesystem paths for the daemon.
type Paths struct {
	Base       string // ~/.fgp
	ServiceDir string // ~/.fgp/services/github
	Config     string // ~/.fgp/services/github/config.yaml
	Socket     string // ~/.fgp/services/github/daemon.sock
	Logs       string // ~/.fgp/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If FGP_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("FGP_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	serviceDir := filepath.Join(base, "services", "github")
	return Paths{
		Base:       base,
		ServiceDir: serviceDir,
		Config:     filepath.Join(serviceDir, "config.yaml"),
		Socket:     filepath.Join(serviceDir, "daemon.sock"),
		Logs:       filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.ServiceDir, p.Logs}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoTags is returned when the repository has no reachable tag
var ErrNoTags = errors.New("no git tags found: tag the release with `git tag v1.0.0.0`")

// ResolveVersion returns the latest tag reachable from HEAD in dir
// (`git describe --tags --abbrev=0`). An empty dir means the working directory.
func ResolveVersion(dir string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git is not installed or not in PATH")
	}

	cmd := exec.Command("git", "describe", "--tags", "--abbrev=0")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := string(exitErr.Stderr)
			if strings.Contains(stderr, "No names found") || strings.Contains(stderr, "No tags") || strings.Contains(stderr, "fatal") {
				return "", ErrNoTags
			}
		}
		return "", fmt.Errorf("failed to resolve version from git tags: %w", err)
	}

	version := strings.TrimSpace(string(out))
	if version == "" {
		return "", ErrNoTags
	}
	return version, nil
}

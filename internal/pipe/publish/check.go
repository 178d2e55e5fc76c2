package publish

import (
	"github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/env"
	"github.com/scarabhk/releasetools/pkg/validate"
)

// skipError is a local skip error type that satisfies the pipe.IsSkip
// interface. pkg/pipe imports this package, so it cannot be used here.
type skipError string

func (e skipError) Error() string { return string(e) }
func (e skipError) IsSkip() bool  { return true }

const skipReason = "publishing skipped, pass --publish-release to upload"

// CheckPipe validates release configuration
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating release configuration" }

func (CheckPipe) Run(ctx *context.Context) error {
	if ctx.SkipPublish {
		return skipError(skipReason)
	}

	cfg := ctx.Config.Release.GitHub

	if err := env.CheckResolved(cfg.Owner, "release.github.owner"); err != nil {
		return err
	}
	if err := env.CheckResolved(cfg.Repo, "release.github.repo"); err != nil {
		return err
	}
	if err := validate.RequiredString(cfg.Owner, "release.github.owner"); err != nil {
		return err
	}
	if err := validate.RequiredString(cfg.Repo, "release.github.repo"); err != nil {
		return err
	}
	if err := validate.RequiredString(ctx.Tag, "tag"); err != nil {
		return err
	}

	// A client injected by the caller does not need a token.
	if ctx.GitHubClient == nil {
		if _, err := token(ctx); err != nil {
			return err
		}
	}

	ctx.Logger.Debug("Release configuration validated successfully")
	return nil
}

// token expands release.github.token, which defaults to env(GITHUB_TOKEN)
func token(ctx *context.Context) (string, error) {
	tok, err := env.ExpandString(ctx.Config.Release.GitHub.Token)
	if err != nil {
		return "", err
	}
	if err := env.CheckResolved(tok, "release.github.token"); err != nil {
		return "", err
	}
	if err := validate.RequiredString(tok, "release.github.token"); err != nil {
		return "", err
	}
	return tok, nil
}

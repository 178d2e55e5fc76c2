package publish

import (
	"fmt"
	"path/filepath"

	gogithub "github.com/google/go-github/github"
	"github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/github"
)

// Pipe uploads the archive to the GitHub release for ctx.Tag, creating the
// release when it does not exist and replacing an asset of the same name.
type Pipe struct{}

func (Pipe) String() string { return "publishing GitHub release asset" }

func (Pipe) Run(ctx *context.Context) error {
	if ctx.SkipPublish {
		return skipError(skipReason)
	}
	if ctx.Artifacts.ArchivePath == "" {
		return fmt.Errorf("no archive to publish: ensure packaging completed successfully")
	}

	client, err := resolveClient(ctx)
	if err != nil {
		return err
	}

	cfg := ctx.Config.Release.GitHub
	release, err := client.GetRelease(ctx.StdCtx, cfg.Owner, cfg.Repo, ctx.Tag)
	switch {
	case err == nil:
		ctx.Logger.Infof("Using existing release %s", ctx.Tag)
	case github.IsNotFound(err):
		release, err = createRelease(ctx, client)
		if err != nil {
			return err
		}
	default:
		return err
	}

	name := filepath.Base(ctx.Artifacts.ArchivePath)
	for _, asset := range release.Assets {
		if asset.GetName() == name {
			ctx.Logger.Infof("Replacing existing asset %s", name)
			if err := client.DeleteReleaseAsset(ctx.StdCtx, cfg.Owner, cfg.Repo, asset.GetID()); err != nil {
				return err
			}
		}
	}

	asset, err := client.UploadReleaseAsset(ctx.StdCtx, cfg.Owner, cfg.Repo, release.GetID(), ctx.Artifacts.ArchivePath)
	if err != nil {
		return err
	}

	ctx.Artifacts.ReleaseURL = release.GetHTMLURL()
	ctx.Logger.Infof("Uploaded %s: %s", name, asset.GetBrowserDownloadURL())
	return nil
}

func resolveClient(ctx *context.Context) (github.ClientInterface, error) {
	if ctx.GitHubClient != nil {
		return ctx.GitHubClient, nil
	}
	tok, err := token(ctx)
	if err != nil {
		return nil, err
	}
	client, err := github.NewClient(tok)
	if err != nil {
		return nil, err
	}
	ctx.GitHubClient = client
	return client, nil
}

func createRelease(ctx *context.Context, client github.ClientInterface) (*gogithub.RepositoryRelease, error) {
	cfg := ctx.Config.Release.GitHub
	name := fmt.Sprintf("%s %s", cfg.Repo, ctx.Tag)
	tag := ctx.Tag
	draft := cfg.Draft

	ctx.Logger.Infof("Creating release %s", name)
	return client.CreateRelease(ctx.StdCtx, cfg.Owner, cfg.Repo, &gogithub.RepositoryRelease{
		TagName: &tag,
		Name:    &name,
		Draft:   &draft,
	})
}

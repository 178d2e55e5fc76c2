package feed

import (
	"github.com/scarabhk/releasetools/pkg/appcast"
	"github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/env"
	"github.com/scarabhk/releasetools/pkg/validate"
)

// CheckPipe validates the version argument and feed configuration
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating feed configuration" }

func (CheckPipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Feed

	if err := validate.RequiredString(ctx.Version, "version"); err != nil {
		return err
	}

	fields := []struct{ name, value string }{
		{"feed.title", cfg.Title},
		{"feed.link", cfg.Link},
		{"feed.item_title", cfg.ItemTitle},
		{"feed.release_notes_url", cfg.ReleaseNotesURL},
		{"feed.download_url", cfg.DownloadURL},
	}
	for _, f := range fields {
		if err := env.CheckResolved(f.value, f.name); err != nil {
			return err
		}
	}

	templated := []struct{ name, value string }{
		{"feed.item_title", cfg.ItemTitle},
		{"feed.release_notes_url", cfg.ReleaseNotesURL},
		{"feed.download_url", cfg.DownloadURL},
	}
	for _, f := range templated {
		if err := appcast.CheckTemplate(f.name, f.value); err != nil {
			return err
		}
	}

	if err := validate.Positive(cfg.Length, "feed.length"); err != nil {
		return err
	}
	if err := validate.RequiredString(outputPath(ctx), "feed.output"); err != nil {
		return err
	}

	if ctx.Feed.AssetPath != "" {
		if _, err := validate.Exists(ctx.Feed.AssetPath, "asset"); err != nil {
			return err
		}
	}

	ctx.Logger.Debug("Feed configuration validated successfully")
	return nil
}

// outputPath is the --output flag when given, else feed.output
func outputPath(ctx *context.Context) string {
	if ctx.Feed.Output != "" {
		return ctx.Feed.Output
	}
	return ctx.Config.Feed.Output
}

package feed

import (
	"github.com/scarabhk/releasetools/pkg/appcast"
	"github.com/scarabhk/releasetools/pkg/checksum"
	"github.com/scarabhk/releasetools/pkg/context"
)

// Pipe renders the update feed and writes it, replacing any previous file
type Pipe struct{}

func (Pipe) String() string { return "writing appcast" }

func (Pipe) Run(ctx *context.Context) error {
	cfg := ctx.Config.Feed
	version := appcast.StripVersionPrefix(ctx.Version)

	if ctx.Feed.AssetPath != "" {
		digest, err := checksum.File(ctx.Feed.AssetPath)
		if err != nil {
			return err
		}
		cfg.Length = digest.Size
		ctx.Logger.WithField("sha256", digest.SHA256).Infof("Enclosure length %d from %s", digest.Size, ctx.Feed.AssetPath)
	}

	data, err := appcast.NewFeedData(cfg, version, ctx.Now())
	if err != nil {
		return err
	}

	content, err := appcast.RenderFeed(data)
	if err != nil {
		return err
	}

	output := outputPath(ctx)
	if err := appcast.WriteFeed(output, content); err != nil {
		return err
	}

	ctx.Artifacts.FeedPath = output
	ctx.Logger.Infof("Created %s for version %s", output, version)
	return nil
}

package cli

import (
	"errors"

	macContext "github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/git"
	"github.com/scarabhk/releasetools/pkg/pipe"
	"github.com/scarabhk/releasetools/pkg/pipeline"
	"github.com/spf13/cobra"
)

const feedName = "make-appcast"

var errMissingVersion = errors.New("version argument is required (or pass --from-tag)")

// NewFeedCmd builds the make-appcast root command
func NewFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   feedName + " <version>",
		Short: "Write the Sparkle update feed for a release",
		Long: `Write appcast.xml, the Sparkle update feed announcing a release.
The version may carry a leading "v", which is removed. Item title, release
notes link and download URL are derived from the version. Running it again
replaces the previous file.`,
		Args:  cobra.RangeArgs(0, 1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, err := newCommandContext(cmd)
			if err != nil {
				exitWithError(cmd, ctx.Logger, err)
			}
			if err := runFeed(cmd, ctx, args); err != nil {
				exitWithError(cmd, ctx.Logger, err)
			}
		},
	}

	addPersistentFlags(cmd, feedName)
	cmd.Flags().StringP("output", "o", "", "feed file to write (default from config, appcast.xml)")
	cmd.Flags().Bool("from-tag", false, "use the latest git tag when no version is given")
	cmd.Flags().String("asset", "", "take the enclosure length from the size of this file")

	return cmd
}

// ExecuteFeed runs make-appcast
func ExecuteFeed() error {
	return NewFeedCmd().Execute()
}

func runFeed(cmd *cobra.Command, ctx *macContext.Context, args []string) error {
	version, err := feedVersion(cmd, ctx, args)
	if err != nil {
		return err
	}

	ctx.Version = version
	ctx.Feed.Output, _ = cmd.Flags().GetString("output")
	ctx.Feed.AssetPath, _ = cmd.Flags().GetString("asset")

	return pipeline.Run(ctx, pipe.FeedStages)
}

// feedVersion returns the positional version, or the latest git tag with
// --from-tag.
func feedVersion(cmd *cobra.Command, ctx *macContext.Context, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	fromTag, _ := cmd.Flags().GetBool("from-tag")
	if !fromTag {
		return "", errMissingVersion
	}

	version, err := git.ResolveVersion("")
	if err != nil {
		return "", err
	}
	ctx.Logger.Infof("Version: %s", version)
	return version, nil
}

package cli

import (
	"fmt"
	"path/filepath"

	macContext "github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/git"
	"github.com/scarabhk/releasetools/pkg/pipe"
	"github.com/scarabhk/releasetools/pkg/pipeline"
	"github.com/spf13/cobra"
)

const bundleName = "make-mac-app"

// NewBundleCmd builds the make-mac-app root command
func NewBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   bundleName + " <app_dir> <publish> <out>",
		Short: "Package a macOS .app bundle with the published executable",
		Long: `Package a macOS .app bundle and the files of a publish directory into
<out>/mac.zip. Publish files land in Contents/MacOS, and the main executable
is stored as the "run" launcher with UNIX permissions 0755.`,
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, err := newCommandContext(cmd)
			if err != nil {
				exitWithError(cmd, ctx.Logger, err)
			}
			if err := runBundle(cmd, ctx, args); err != nil {
				exitWithError(cmd, ctx.Logger, err)
			}
		},
	}

	addPersistentFlags(cmd, bundleName)
	cmd.Flags().Bool("publish-release", false, "upload the archive to the GitHub release")
	cmd.Flags().String("tag", "", "release tag to publish to (default: latest git tag)")

	return cmd
}

// ExecuteBundle runs make-mac-app
func ExecuteBundle() error {
	return NewBundleCmd().Execute()
}

func runBundle(cmd *cobra.Command, ctx *macContext.Context, args []string) error {
	ctx.Bundle = macContext.BundleInputs{
		AppDir:     args[0],
		PublishDir: args[1],
		OutDir:     args[2],
	}

	publish, _ := cmd.Flags().GetBool("publish-release")
	ctx.SkipPublish = !publish

	if publish {
		tag, _ := cmd.Flags().GetString("tag")
		if tag == "" {
			resolved, err := git.ResolveVersion("")
			if err != nil {
				return err
			}
			tag = resolved
		}
		ctx.Tag = tag
		ctx.Logger.Infof("Release tag: %s", tag)
	}

	if err := pipeline.Run(ctx, pipe.BundleStages); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", filepath.Base(ctx.Artifacts.ArchivePath))
	return nil
}

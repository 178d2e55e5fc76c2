package bundle

import (
	"fmt"
	"strings"

	"github.com/scarabhk/releasetools/pkg/bundle"
	"github.com/scarabhk/releasetools/pkg/context"
	"github.com/scarabhk/releasetools/pkg/validate"
)

// CheckPipe validates the bundle layout configuration and the command line
// inputs. It fails before anything is written.
type CheckPipe struct{}

func (CheckPipe) String() string { return "validating bundle inputs" }

func (CheckPipe) Run(ctx *context.Context) error {
	layout := ctx.Config.Bundle

	if !strings.HasPrefix(layout.Suffix, ".") || len(layout.Suffix) < 2 {
		return fmt.Errorf("invalid bundle.suffix: %q must start with a dot", layout.Suffix)
	}

	names := []struct{ value, field string }{
		{layout.Executable, "bundle.executable"},
		{layout.ContentsDir, "bundle.contents_dir"},
		{layout.ExecutableDir, "bundle.executable_dir"},
		{layout.Launcher, "bundle.launcher"},
		{layout.Archive, "bundle.archive"},
	}
	for _, n := range names {
		if err := validate.PlainName(n.value, n.field); err != nil {
			return err
		}
	}

	for from, to := range layout.Renames {
		if err := validate.PlainName(from, "bundle.renames key"); err != nil {
			return err
		}
		if err := validate.PlainName(to, "bundle.renames["+from+"]"); err != nil {
			return err
		}
	}

	if err := bundle.Validate(options(ctx)); err != nil {
		return err
	}

	ctx.Logger.Debug("Bundle inputs validated successfully")
	return nil
}

func options(ctx *context.Context) bundle.Options {
	return bundle.Options{
		AppDir:     ctx.Bundle.AppDir,
		PublishDir: ctx.Bundle.PublishDir,
		OutDir:     ctx.Bundle.OutDir,
		Layout:     ctx.Config.Bundle,
		Now:        ctx.Now,
		Logger:     ctx.Logger,
	}
}

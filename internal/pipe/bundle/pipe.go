package bundle

import (
	"github.com/scarabhk/releasetools/pkg/bundle"
	"github.com/scarabhk/releasetools/pkg/checksum"
	"github.com/scarabhk/releasetools/pkg/context"
)

// Pipe merges the .app bundle and the publish directory into the archive
type Pipe struct{}

func (Pipe) String() string { return "packaging mac archive" }

func (Pipe) Run(ctx *context.Context) error {
	res, err := bundle.Package(options(ctx))
	if err != nil {
		return err
	}

	ctx.Artifacts.ArchivePath = res.ArchivePath
	ctx.Artifacts.Entries = res.Entries

	digest, err := checksum.File(res.ArchivePath)
	if err != nil {
		return err
	}
	ctx.Artifacts.Digest = digest

	ctx.Logger.Infof("Packaged %d entries into %s", len(res.Entries), res.ArchivePath)
	ctx.Logger.WithField("sha256", digest.SHA256).WithField("size", digest.Size).
		Debugf("%s: %d entries", res.ArchivePath, len(res.Entries))
	return nil
}

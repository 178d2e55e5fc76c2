package context

import (
	"context"
	"time"

	"github.com/scarabhk/releasetools/pkg/checksum"
	"github.com/scarabhk/releasetools/pkg/config"
	"github.com/scarabhk/releasetools/pkg/github"
	"github.com/sirupsen/logrus"
)

// Context provides shared state for all pipes
type Context struct {
	StdCtx context.Context // Standard context for cancellation support
	Config *config.Config
	Logger *logrus.Logger

	// Version is the raw version argument given to make-appcast
	Version string
	// Tag names the GitHub release the archive is published to
	Tag string

	Feed   FeedInputs
	Bundle BundleInputs

	// Now is the clock used for pubDate and executable entries
	Now func() time.Time

	SkipPublish  bool
	GitHubClient github.ClientInterface

	Artifacts Artifacts
}

// FeedInputs holds make-appcast command line inputs
type FeedInputs struct {
	// Output overrides feed.output when set
	Output string
	// AssetPath, when set, provides the enclosure length from a real file
	AssetPath string
}

// BundleInputs holds make-mac-app positional arguments
type BundleInputs struct {
	AppDir     string
	PublishDir string
	OutDir     string
}

// Artifacts records what the execution pipes produced
type Artifacts struct {
	FeedPath    string
	ArchivePath string
	Entries     []string
	Digest      checksum.Digest
	ReleaseURL  string
}

// NewContext creates a new context with the given standard context, config, and logger.
// If stdCtx is nil, context.Background() is used.
func NewContext(stdCtx context.Context, cfg *config.Config, logger *logrus.Logger) *Context {
	if stdCtx == nil {
		stdCtx = context.Background()
	}
	return &Context{
		StdCtx: stdCtx,
		Config: cfg,
		Logger: logger,
		Now:    time.Now,
	}
}

// Done returns the done channel from the standard context for cancellation support
func (c *Context) Done() <-chan struct{} {
	return c.StdCtx.Done()
}

// Err returns the error from the standard context
func (c *Context) Err() error {
	return c.StdCtx.Err()
}

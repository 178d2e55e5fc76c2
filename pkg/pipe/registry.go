package pipe

import (
	"github.com/scarabhk/releasetools/internal/pipe/bundle"
	"github.com/scarabhk/releasetools/internal/pipe/feed"
	"github.com/scarabhk/releasetools/internal/pipe/publish"
)

// Stages groups the validation and execution pipes of one tool
type Stages struct {
	Validation []Piper
	Execution  []Piper
}

// FeedStages drives make-appcast
var FeedStages = Stages{
	Validation: []Piper{
		feed.CheckPipe{}, // Validate version and feed config
	},
	Execution: []Piper{
		feed.Pipe{}, // Render and write appcast.xml
	},
}

// BundleStages drives make-mac-app
var BundleStages = Stages{
	Validation: []Piper{
		bundle.CheckPipe{},  // Validate bundle layout and inputs
		publish.CheckPipe{}, // Validate release config
	},
	Execution: []Piper{
		bundle.Pipe{},  // Write mac.zip
		publish.Pipe{}, // Upload mac.zip to the GitHub release
	},
}

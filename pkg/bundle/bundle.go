// Package bundle repackages a macOS .app bundle together with a separately
// published executable into a single zip archive.
//
// The bundle tree is copied as-is. Every directory named like the layout's
// contents directory (normally "Contents") additionally receives the files of
// the publish directory under its executable directory ("MacOS"), with the
// primary executable stored as the launcher ("run") carrying UNIX executable
// permissions.
package bundle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/scarabhk/releasetools/pkg/archive"
	"github.com/scarabhk/releasetools/pkg/config"
	"github.com/scarabhk/releasetools/pkg/validate"
	"github.com/sirupsen/logrus"
)

// ErrNotBundle is matched by errors reporting an app directory without the
// bundle suffix.
var ErrNotBundle = errors.New("not an application bundle")

// NotBundleError reports an app directory that lacks the bundle suffix
type NotBundleError struct {
	Path   string
	Suffix string
}

func (e *NotBundleError) Error() string {
	return fmt.Sprintf("%s is not an %s folder.", e.Path, e.Suffix)
}

func (e *NotBundleError) Is(target error) bool { return target == ErrNotBundle }

// Options configures a single packaging run
type Options struct {
	AppDir     string
	PublishDir string
	OutDir     string
	Layout     config.BundleConfig
	// Now stamps executable entries. Defaults to time.Now.
	Now func() time.Time
	// Logger receives per-entry debug output and duplicate warnings.
	Logger logrus.FieldLogger
}

// Result describes the archive produced by Package
type Result struct {
	ArchivePath string
	Entries     []string
}

// Validate checks the packaging preconditions in order: the bundle suffix,
// the bundle directory, then the primary executable inside the publish
// directory. Nothing is written.
func Validate(opts Options) error {
	appDir := filepath.Clean(opts.AppDir)
	if filepath.Ext(appDir) != opts.Layout.Suffix {
		return &NotBundleError{Path: opts.AppDir, Suffix: opts.Layout.Suffix}
	}

	info, err := validate.Exists(appDir, "app directory")
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("app directory %s is not a directory", appDir)
	}

	if _, err := validate.Exists(executablePath(opts), "executable"); err != nil {
		return err
	}
	return nil
}

// Package validates opts, then writes <OutDir>/<Layout.Archive>. A failure
// after the archive was created leaves the partial file in place.
func Package(opts Options) (*Result, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	appWalk, err := resolveRoot(opts.AppDir)
	if err != nil {
		return nil, err
	}
	publishWalk, err := resolveRoot(opts.PublishDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", opts.OutDir, err)
	}

	archivePath := filepath.Join(opts.OutDir, opts.Layout.Archive)
	zw, err := archive.CreateZip(archivePath)
	if err != nil {
		return nil, err
	}

	p := newPackager(opts, zw, appWalk, publishWalk)
	if err := filepath.WalkDir(p.appWalk, p.visitBundle); err != nil {
		_ = zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return &Result{ArchivePath: archivePath, Entries: zw.Entries()}, nil
}

// Rename maps a publish file name through the override table
func Rename(renames map[string]string, name string) string {
	if renamed, ok := renames[name]; ok {
		return renamed
	}
	return name
}

// resolveRoot follows symlinks in a root directory so the walk lists its
// contents instead of the link itself.
func resolveRoot(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return resolved, nil
}

func executablePath(opts Options) string {
	return filepath.Join(opts.PublishDir, opts.Layout.Executable)
}

type packager struct {
	opts Options
	zw   *archive.ZipWriter
	log  logrus.FieldLogger
	now  func() time.Time
	// appWalk and publishWalk are the resolved roots that get walked.
	appWalk     string
	publishWalk string
	// bundleName prefixes every entry name, as given on the command line.
	bundleName string
	seen       map[string]bool
}

func newPackager(opts Options, zw *archive.ZipWriter, appWalk, publishWalk string) *packager {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &packager{
		opts:        opts,
		zw:          zw,
		log:         log,
		now:         now,
		appWalk:     appWalk,
		publishWalk: publishWalk,
		bundleName:  filepath.Base(filepath.Clean(opts.AppDir)),
		seen:        make(map[string]bool),
	}
}

func (p *packager) visitBundle(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() {
		if path != p.appWalk && d.Name() == p.opts.Layout.ContentsDir {
			return p.overlayPublish(path)
		}
		return nil
	}

	ok, err := p.archivable(path, d)
	if err != nil || !ok {
		return err
	}

	name, err := p.entryName(path)
	if err != nil {
		return err
	}

	if d.Name() == p.opts.Layout.Executable {
		return p.addExecutable(path, name)
	}
	return p.addFile(path, name)
}

// entryName maps a walked path to its archive name, e.g.
// Scarab.app/Contents/Info.plist.
func (p *packager) entryName(path string) (string, error) {
	rel, err := filepath.Rel(p.appWalk, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve archive path for %s: %w", path, err)
	}
	return filepath.Join(p.bundleName, rel), nil
}

// archivable reports whether a non-directory entry is stored. Symlinks to
// regular files are stored with the target's content; symlinks to
// directories are not descended.
func (p *packager) archivable(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}

	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			return false, fmt.Errorf("failed to follow symlink %s: %w", path, err)
		}
		if info.Mode().IsRegular() {
			return true, nil
		}
		if info.IsDir() {
			p.log.Debugf("Not descending into symlinked directory %s", path)
			return false, nil
		}
	}

	p.log.Warnf("Skipping non-regular file %s", path)
	return false, nil
}

// overlayPublish writes the publish directory into <contents>/<executable dir>
// and finishes with the launcher entry.
func (p *packager) overlayPublish(contents string) error {
	rel, err := p.entryName(contents)
	if err != nil {
		return err
	}
	target := filepath.Join(rel, p.opts.Layout.ExecutableDir)

	err = filepath.WalkDir(p.publishWalk, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == p.opts.Layout.Executable {
			return nil
		}
		ok, err := p.archivable(path, d)
		if err != nil || !ok {
			return err
		}
		return p.addFile(path, filepath.Join(target, Rename(p.opts.Layout.Renames, d.Name())))
	})
	if err != nil {
		return err
	}

	return p.addExecutable(executablePath(p.opts), filepath.Join(target, p.opts.Layout.Launcher))
}

func (p *packager) addFile(src, name string) error {
	p.track(name)
	return p.zw.AddFile(src, name)
}

func (p *packager) addExecutable(src, name string) error {
	p.track(name)
	return p.zw.AddExecutable(src, name, p.now())
}

func (p *packager) track(name string) {
	key := filepath.ToSlash(name)
	if p.seen[key] {
		p.log.Warnf("Duplicate archive entry %s", key)
	}
	p.seen[key] = true
	p.log.Debugf("Adding %s", key)
}

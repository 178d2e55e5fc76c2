package bundle

import (
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scarabhk/releasetools/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root    string
	app     string
	publish string
	out     string
}

// newFixture lays out a minimal Scarab.app and publish directory.
func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:    root,
		app:     filepath.Join(root, "Scarab.app"),
		publish: filepath.Join(root, "publish"),
		out:     filepath.Join(root, "out"),
	}

	writeFile(t, filepath.Join(f.app, "Contents", "Info.plist"), "<plist/>", 0o644)
	writeFile(t, filepath.Join(f.app, "Contents", "Resources", "Scarab.icns"), "icns", 0o644)
	writeFile(t, filepath.Join(f.app, "Contents", "MacOS", "Scarab"), "bundle-stub", 0o644)

	writeFile(t, filepath.Join(f.publish, "Scarab"), "published-binary", 0o644)
	writeFile(t, filepath.Join(f.publish, "Scarab.pdb"), "symbols", 0o644)
	writeFile(t, filepath.Join(f.publish, "libSkiaSharp.dylib"), "skia", 0o644)
	return f
}

func (f fixture) options() Options {
	return Options{
		AppDir:     f.app,
		PublishDir: f.publish,
		OutDir:     f.out,
		Layout:     config.Default().Bundle,
	}
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func openArchive(t *testing.T, path string) map[string]*zip.File {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	files := make(map[string]*zip.File, len(r.File))
	for _, zf := range r.File {
		files[zf.Name] = zf
	}
	return files
}

func content(t *testing.T, zf *zip.File) string {
	t.Helper()
	rc, err := zf.Open()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func isExecutable(zf *zip.File) bool {
	return zf.CreatorVersion>>8 == 3 && zf.Mode().Perm() == 0o755
}

func TestPackageLayout(t *testing.T) {
	f := newFixture(t)
	stamp := time.Date(2023, 1, 2, 3, 4, 6, 0, time.Local)
	opts := f.options()
	opts.Now = func() time.Time { return stamp }

	res, err := Package(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.out, "mac.zip"), res.ArchivePath)

	files := openArchive(t, res.ArchivePath)

	run := files["Scarab.app/Contents/MacOS/run"]
	require.NotNil(t, run, "launcher entry missing")
	assert.True(t, isExecutable(run), "run mode = %v", run.Mode())
	assert.Equal(t, "published-binary", content(t, run))
	assert.True(t, run.Modified.Equal(stamp), "run Modified = %v", run.Modified)

	pdb := files["Scarab.app/Contents/MacOS/run.pdb"]
	require.NotNil(t, pdb, "renamed symbols entry missing")
	assert.Equal(t, os.FileMode(0o644), pdb.Mode().Perm())
	assert.Equal(t, "symbols", content(t, pdb))

	skia := files["Scarab.app/Contents/MacOS/libSkiaSharp.dylib"]
	require.NotNil(t, skia)
	assert.Equal(t, "skia", content(t, skia))

	assert.NotContains(t, files, "Scarab.app/Contents/MacOS/Scarab.pdb")

	// the bundle's own executable keeps its path but gains exec bits
	stub := files["Scarab.app/Contents/MacOS/Scarab"]
	require.NotNil(t, stub)
	assert.True(t, isExecutable(stub))
	assert.Equal(t, "bundle-stub", content(t, stub))
}

func TestPackagePublishExecutableNotCopiedVerbatim(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.app, "Contents", "MacOS", "Scarab")))

	res, err := Package(f.options())
	require.NoError(t, err)

	files := openArchive(t, res.ArchivePath)
	assert.NotContains(t, files, "Scarab.app/Contents/MacOS/Scarab")
	assert.Contains(t, files, "Scarab.app/Contents/MacOS/run")
}

func TestPackageRoundTrip(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.app, "Contents", "Resources", "en.lproj", "Localizable.strings"), "\"a\" = \"b\";", 0o644)

	res, err := Package(f.options())
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	err = filepath.WalkDir(f.app, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() || d.Name() == "Scarab" {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		require.NoError(t, err)

		zf := files[filepath.ToSlash(rel)]
		require.NotNil(t, zf, "missing %s", rel)

		want, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(want), content(t, zf), "content of %s", rel)
		return nil
	})
	require.NoError(t, err)
}

func TestPackageSingleExecutableBundle(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "Tiny.app")
	publish := filepath.Join(root, "publish")
	writeFile(t, filepath.Join(app, "Scarab"), "bin", 0o600)
	writeFile(t, filepath.Join(publish, "Scarab"), "bin", 0o600)

	res, err := Package(Options{
		AppDir:     app,
		PublishDir: publish,
		OutDir:     filepath.Join(root, "out"),
		Layout:     config.Default().Bundle,
	})
	require.NoError(t, err)

	files := openArchive(t, res.ArchivePath)
	require.Len(t, files, 1)
	zf := files["Tiny.app/Scarab"]
	require.NotNil(t, zf)
	assert.NotZero(t, zf.Mode().Perm()&0o100, "owner execute bit not set: %v", zf.Mode())
}

func TestPackageNestedContents(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.app, "Contents", "Helpers", "Helper.app", "Contents", "Info.plist"), "<plist/>", 0o644)

	res, err := Package(f.options())
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	assert.Contains(t, files, "Scarab.app/Contents/MacOS/run")
	assert.Contains(t, files, "Scarab.app/Contents/Helpers/Helper.app/Contents/MacOS/run")
	assert.Contains(t, files, "Scarab.app/Contents/Helpers/Helper.app/Contents/MacOS/run.pdb")
}

func TestPackagePublishSubdirectoriesFlattened(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.publish, "runtimes", "native.dylib"), "native", 0o644)

	res, err := Package(f.options())
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	assert.Contains(t, files, "Scarab.app/Contents/MacOS/native.dylib")
}

func TestPackageCustomRenames(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.Layout.Renames = map[string]string{
		"Scarab.pdb":         "run.pdb",
		"libSkiaSharp.dylib": "libskia.dylib",
	}

	res, err := Package(opts)
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	assert.Contains(t, files, "Scarab.app/Contents/MacOS/libskia.dylib")
	assert.NotContains(t, files, "Scarab.app/Contents/MacOS/libSkiaSharp.dylib")
}

func TestPackageOverwritesExistingArchive(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.out, "mac.zip"), "stale", 0o644)

	res, err := Package(f.options())
	require.NoError(t, err)
	assert.Contains(t, openArchive(t, res.ArchivePath), "Scarab.app/Contents/Info.plist")
}

func TestPackageEntriesRelativeToWorkingDir(t *testing.T) {
	f := newFixture(t)
	t.Chdir(f.root)

	res, err := Package(Options{
		AppDir:     "Scarab.app/",
		PublishDir: "publish",
		OutDir:     "out",
		Layout:     config.Default().Bundle,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Entries, "Scarab.app/Contents/Info.plist")
	assert.Contains(t, res.Entries, "Scarab.app/Contents/MacOS/run")
}

func TestPackageSymlinkedRoots(t *testing.T) {
	f := newFixture(t)
	app := filepath.Join(f.root, "Link.app")
	publish := filepath.Join(f.root, "publish-link")
	require.NoError(t, os.Symlink(f.app, app))
	require.NoError(t, os.Symlink(f.publish, publish))

	res, err := Package(Options{
		AppDir:     app,
		PublishDir: publish,
		OutDir:     f.out,
		Layout:     config.Default().Bundle,
	})
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	for _, name := range []string{
		"Link.app/Contents/Info.plist",
		"Link.app/Contents/Resources/Scarab.icns",
		"Link.app/Contents/MacOS/Scarab",
		"Link.app/Contents/MacOS/run",
		"Link.app/Contents/MacOS/run.pdb",
		"Link.app/Contents/MacOS/libSkiaSharp.dylib",
	} {
		assert.Contains(t, files, name)
	}
	assert.Equal(t, "symbols", content(t, files["Link.app/Contents/MacOS/run.pdb"]))
	assert.Len(t, files, 6)
}

func TestPackageFollowsSymlinkedFiles(t *testing.T) {
	f := newFixture(t)
	resources := filepath.Join(f.app, "Contents", "Resources")
	require.NoError(t, os.Symlink("Scarab.icns", filepath.Join(resources, "AppIcon.icns")))
	writeFile(t, filepath.Join(f.root, "shared", "libcommon.dylib"), "common", 0o644)
	require.NoError(t, os.Symlink(filepath.Join(f.root, "shared", "libcommon.dylib"), filepath.Join(f.publish, "libcommon.dylib")))

	res, err := Package(f.options())
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	icon := files["Scarab.app/Contents/Resources/AppIcon.icns"]
	require.NotNil(t, icon, "symlinked resource missing")
	assert.Equal(t, "icns", content(t, icon))

	lib := files["Scarab.app/Contents/MacOS/libcommon.dylib"]
	require.NotNil(t, lib, "symlinked publish file missing")
	assert.Equal(t, "common", content(t, lib))
}

func TestPackageDoesNotDescendSymlinkedDirectories(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.root, "external", "data.bin"), "data", 0o644)
	require.NoError(t, os.Symlink(filepath.Join(f.root, "external"), filepath.Join(f.app, "Contents", "Frameworks")))

	res, err := Package(f.options())
	require.NoError(t, err)
	files := openArchive(t, res.ArchivePath)

	assert.NotContains(t, files, "Scarab.app/Contents/Frameworks/data.bin")
	assert.NotContains(t, files, "Scarab.app/Contents/Frameworks")
}

func TestPackageBrokenSymlink(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Symlink("missing.icns", filepath.Join(f.app, "Contents", "Resources", "Broken.icns")))

	_, err := Package(f.options())
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "Broken.icns")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f fixture, o *Options)
		wantErr error
		errMsg  string
	}{
		{
			name:   "valid",
			mutate: func(fixture, *Options) {},
		},
		{
			name: "missing suffix",
			mutate: func(f fixture, o *Options) {
				o.AppDir = filepath.Join(f.root, "Scarab")
			},
			wantErr: ErrNotBundle,
			errMsg:  "is not an .app folder.",
		},
		{
			name: "bundle missing",
			mutate: func(f fixture, o *Options) {
				o.AppDir = filepath.Join(f.root, "Missing.app")
			},
			wantErr: fs.ErrNotExist,
			errMsg:  "Missing.app",
		},
		{
			name: "bundle is a file",
			mutate: func(f fixture, o *Options) {
				o.AppDir = filepath.Join(f.root, "File.app")
				writeFile(t, o.AppDir, "", 0o644)
			},
			errMsg: "is not a directory",
		},
		{
			name: "executable missing",
			mutate: func(f fixture, o *Options) {
				require.NoError(t, os.Remove(filepath.Join(f.publish, "Scarab")))
			},
			wantErr: fs.ErrNotExist,
			errMsg:  filepath.Join("publish", "Scarab"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			opts := f.options()
			tt.mutate(f, &opts)

			err := Validate(opts)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "errors.Is(%v, %v)", err, tt.wantErr)
			}
		})
	}
}

func TestPackageFailsBeforeCreatingArchive(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f fixture, o *Options)
	}{
		{
			name: "suffix mismatch",
			mutate: func(f fixture, o *Options) {
				require.NoError(t, os.Rename(f.app, filepath.Join(f.root, "Scarab")))
				o.AppDir = filepath.Join(f.root, "Scarab")
			},
		},
		{
			name: "executable missing",
			mutate: func(f fixture, o *Options) {
				require.NoError(t, os.Remove(filepath.Join(f.publish, "Scarab")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			opts := f.options()
			tt.mutate(f, &opts)

			_, err := Package(opts)
			require.Error(t, err)

			_, statErr := os.Stat(f.out)
			assert.True(t, errors.Is(statErr, fs.ErrNotExist), "output directory should not exist")
		})
	}
}

func TestRename(t *testing.T) {
	renames := map[string]string{"Scarab.pdb": "run.pdb"}
	assert.Equal(t, "run.pdb", Rename(renames, "Scarab.pdb"))
	assert.Equal(t, "Avalonia.dll", Rename(renames, "Avalonia.dll"))
	assert.Equal(t, "Scarab.pdb", Rename(nil, "Scarab.pdb"))
}

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	// creatorUnix is the "version made by" host byte for UNIX
	creatorUnix = 3
	// modeRegular is S_IFREG
	modeRegular = 0o100000
	// ExecutableMode is -rwxr-xr-x
	ExecutableMode = 0o755
)

// ZipWriter writes a deflate-compressed zip archive file-by-file.
// It is not safe for concurrent use.
type ZipWriter struct {
	file    *os.File
	zw      *zip.Writer
	entries []string
}

// CreateZip creates (or truncates) the archive at outputPath
func CreateZip(outputPath string) (*ZipWriter, error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create ZIP archive: %w", err)
	}
	return &ZipWriter{file: f, zw: zip.NewWriter(f)}, nil
}

// AddFile stores src under name using metadata taken from the source file:
// its modification time and permission bits.
func (w *ZipWriter) AddFile(src, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", src, err)
	}
	header.Name = cleanName(name)
	header.Method = zip.Deflate

	return w.write(header, src)
}

// AddExecutable stores src under name as a UNIX executable. The entry is
// stamped with modified instead of the file's own mtime, carries mode
// -rwxr-xr-x and is tagged as created on UNIX so extractors apply the bits.
func (w *ZipWriter) AddExecutable(src, name string, modified time.Time) error {
	header := &zip.FileHeader{
		Name:     cleanName(name),
		Method:   zip.Deflate,
		Modified: modified,
	}
	header.CreatorVersion = creatorUnix << 8
	header.ExternalAttrs = (modeRegular | ExecutableMode) << 16

	return w.write(header, src)
}

func (w *ZipWriter) write(header *zip.FileHeader, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := w.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", header.Name, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}

	w.entries = append(w.entries, header.Name)
	return nil
}

// Entries returns the entry names written so far, in write order
func (w *ZipWriter) Entries() []string {
	return append([]string(nil), w.entries...)
}

// Close finishes the central directory and closes the underlying file
func (w *ZipWriter) Close() error {
	zerr := w.zw.Close()
	ferr := w.file.Close()
	if zerr != nil {
		return fmt.Errorf("failed to finalize ZIP archive: %w", zerr)
	}
	if ferr != nil {
		return fmt.Errorf("failed to close ZIP archive: %w", ferr)
	}
	return nil
}

// cleanName converts an OS path into a zip entry name: forward slashes and
// no leading slash or dot segments.
func cleanName(name string) string {
	name = path.Clean(filepath.ToSlash(name))
	for len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	for len(name) >= 3 && name[:3] == "../" {
		name = name[3:]
	}
	return name
}

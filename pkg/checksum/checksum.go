package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest describes a produced artifact
type Digest struct {
	SHA256 string // lowercase hex
	Size   int64
}

// File hashes the file at path and records its size in the same pass
func File(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to compute SHA256: %w", err)
	}

	return Digest{SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}

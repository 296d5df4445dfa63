package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/binary-install/clangenv/pkg/registry"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ComputeChecksum computes the sha256 of a toolchain archive, the digest
// stored as a registry entry's content hash.
func ComputeChecksum(fs afero.Fs, filePath string) (string, error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", errors.Wrap(err, "failed to compute checksum")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum verifies that a file matches the expected checksum
func VerifyChecksum(fs afero.Fs, filePath, expectedHash string) error {
	computedHash, err := ComputeChecksum(fs, filePath)
	if err != nil {
		return err
	}

	// Compare case-insensitively
	if !strings.EqualFold(computedHash, expectedHash) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedHash, computedHash)
	}

	return nil
}

// VerifyArchive verifies a downloaded or local archive against a registry entry
func VerifyArchive(fs afero.Fs, entry registry.ToolchainEntry, filePath string) error {
	if entry.ContentHash == "" {
		return &registry.UnsupportedPlatformError{
			Platform: entry.Name,
			Reason:   "no content hash is registered",
		}
	}
	if err := VerifyChecksum(fs, filePath, entry.ContentHash); err != nil {
		return errors.Wrapf(err, "%s", entry.Name)
	}
	return nil
}

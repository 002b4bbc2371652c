// Package fileutil copies files into place with integrity checks.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrExists is returned when the copy target is already present.
var ErrExists = errors.New("destination already exists")

// CopyVerified streams src to dst and returns the number of bytes copied.
// The size is checked and the SHA256 of the source stream is compared with a
// re-read of the written file. The bytes land in a temporary file
// next to dst that is renamed into place only after verification, so dst is
// either absent or complete. An existing dst is never overwritten.
func CopyVerified(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return 0, fmt.Errorf("source %s is a directory", src)
	}
	if _, err := os.Lstat(dst); err == nil {
		return 0, fmt.Errorf("%s: %w", dst, ErrExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("stat destination: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmp := out.Name()
	committed := false
	defer func() {
		_ = out.Close()
		if !committed {
			_ = os.Remove(tmp)
		}
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		return 0, err
	}
	if err := out.Sync(); err != nil {
		return 0, fmt.Errorf("sync temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if written != srcInfo.Size() {
		return 0, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	dstSum, err := hashFile(tmp)
	if err != nil {
		return 0, fmt.Errorf("hash temp file: %w", err)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		return 0, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return 0, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return 0, fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return written, nil
}

// hashFile returns the SHA256 of the file at path as read back from disk.
func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

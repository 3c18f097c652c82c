package snapio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"
)

// Compression suffixes that ReadFile strips transparently.
const (
	ZstdExt = ".zst"
	GzipExt = ".gz"
)

// MaxFileSize is the largest decompressed size ReadFile accepts for a
// compressed file.
var MaxFileSize int64 = 16 << 30

// ErrFileTooLarge is returned when a compressed file expands past
// MaxFileSize.
var ErrFileTooLarge = errors.New("decompressed file too large")

// TrimCompression removes a trailing compression suffix from path.
func TrimCompression(path string) string {
	switch filepath.Ext(path) {
	case ZstdExt, GzipExt:
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

// ReadFile reads a whole file into memory. Files ending in .zst or .gz are
// decompressed, so "run_0001.hsol.zst" yields the same bytes as the
// uncompressed "run_0001.hsol" would.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("The file %s cannot be opened. The system "+
			"error is: %w", path, err)
	} else if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a HORSES3D file.", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ZstdExt:
		rd := zstd.NewReader(bytes.NewReader(raw))
		defer rd.Close()
		out, err := readLimited(rd, path)
		if err != nil {
			return nil, fmt.Errorf("zstd decompression of %s: %w", path, err)
		}
		return out, nil
	case GzipExt:
		rd, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip header of %s: %w", path, err)
		}
		defer rd.Close()
		out, err := readLimited(rd, path)
		if err != nil {
			return nil, fmt.Errorf("gzip decompression of %s: %w", path, err)
		}
		return out, nil
	}
	return raw, nil
}

// readLimited reads rd to the end, failing once more than MaxFileSize bytes
// come out of it.
func readLimited(rd io.Reader, path string) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(rd, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > MaxFileSize {
		return nil, fmt.Errorf("%w: %s expands past %d bytes",
			ErrFileTooLarge, path, MaxFileSize)
	}
	return out, nil
}

// ReadSolution reads and decodes the .hsol file at path.
func ReadSolution(path string, order binary.ByteOrder) (*Solution, error) {
	buf, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	sol, err := Decode(buf, order)
	if err != nil {
		return nil, WithPath(err, path)
	}
	return sol, nil
}

// ReadMesh reads and decodes the .hmesh file at path.
func ReadMesh(path string, order binary.ByteOrder) (*Mesh, error) {
	buf, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := DecodeMesh(buf, order)
	if err != nil {
		return nil, WithPath(err, path)
	}
	return m, nil
}

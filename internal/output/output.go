// Package output reads and writes the files the CLI works on. The path "-"
// stands for stdin or stdout; gzip and zstd streams are decompressed on read
// and produced on write when the path ends in .gz or .zst.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

// Compression is a stream compression chosen by file extension.
type Compression string

const (
	None Compression = ""
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// CompressionFor picks the compression for path from its extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	}
	return None
}

// sniff detects a compressed stream by its magic number, so inputs are
// decompressed whatever their name.
func sniff(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	}
	return None
}

// Read returns the content of path, or of stdin for "-", decompressed.
func Read(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == Stdio {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", displayName(path), err)
	}
	out, err := Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decompress %s: %w", displayName(path), err)
	}
	return out, nil
}

// Write stores data at path, or on stdout for "-", with a trailing newline
// and compressed as the extension asks.
func Write(path string, data []byte, stdout io.Writer) error {
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	if path == Stdio {
		_, err := stdout.Write(data)
		return err
	}
	data, err := Compress(data, CompressionFor(path))
	if err != nil {
		return fmt.Errorf("cannot compress %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Compress encodes data with c.
func Compress(data []byte, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case None:
		return data, nil
	case Gzip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip write error: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close error: %w", err)
		}
	case Zstd:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := enc.Write(data); err != nil {
			return nil, fmt.Errorf("zstd write error: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zstd close error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported compression %q", c)
	}
	return buf.Bytes(), nil
}

// Decompress decodes data when it starts with a gzip or zstd header and
// returns it unchanged otherwise.
func Decompress(data []byte) ([]byte, error) {
	switch sniff(data) {
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case Zstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	}
	return data, nil
}

// DerivePath names the output of converting input: the directory dir, the
// input's base name stripped of compression and .json extensions, and
// suffix. The compression extension of input is kept.
func DerivePath(input, dir, suffix string) string {
	base := filepath.Base(input)
	if input == Stdio {
		base = "stdin"
	}
	comp := ""
	if CompressionFor(base) != None {
		comp = filepath.Ext(base)
		base = strings.TrimSuffix(base, comp)
	}
	base = strings.TrimSuffix(base, ".json")
	return filepath.Join(dir, base+suffix+comp)
}

func displayName(path string) string {
	if path == Stdio {
		return "stdin"
	}
	return path
}

package reader

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType is the outer compression of an input file.
type CompressionType int

const (
	// CompressionNone is an uncompressed file.
	CompressionNone CompressionType = iota
	// CompressionGZ is gzip.
	CompressionGZ
	// CompressionBZ2 is bzip2.
	CompressionBZ2
	// CompressionXZ is xz.
	CompressionXZ
	// CompressionZSTD is zstandard.
	CompressionZSTD
)

const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// Extension returns the file extension of the compression type.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionBZ2:
		return extBZ2
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// String returns a short name of the compression type.
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gzip"
	case CompressionBZ2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// detectCompression returns the compression type implied by the path suffix.
func detectCompression(path string) CompressionType {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, extGZ):
		return CompressionGZ
	case strings.HasSuffix(lower, extBZ2):
		return CompressionBZ2
	case strings.HasSuffix(lower, extXZ):
		return CompressionXZ
	case strings.HasSuffix(lower, extZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// trimCompression removes a compression extension from path if present.
func trimCompression(path string) string {
	if c := detectCompression(path); c != CompressionNone {
		return path[:len(path)-len(c.Extension())]
	}
	return path
}

// decompress wraps r with a decompression reader for c.
// The returned cleanup releases decoder resources only; closing r stays with the caller.
func decompress(c CompressionType, r io.Reader) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	case CompressionBZ2:
		return bzip2.NewReader(r), func() {}, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xr, func() {}, nil
	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, decoder.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression type: %v", c)
	}
}

// Package gem reads gem specifications out of packaged gems and loose
// metadata files.
package gem

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/frederic-klein/gemspec/internal/decoder"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// MetadataEntry is the archive member holding the gzipped specification.
const MetadataEntry = "metadata.gz"

// ErrNoMetadata is returned when a package has no metadata.gz member.
var ErrNoMetadata = errors.New("no metadata.gz found in package")

// Extractor loads specifications from files on disk.
//
// Three inputs are understood: a .gem package (an uncompressed tar holding
// metadata.gz), a gzipped metadata file, and plain specification YAML.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes the specification stored at path. The format is chosen
// by file extension.
func (e *Extractor) Extract(path string) (*gemspec.Specification, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gem":
		return e.ExtractPackage(file)
	case ".gz":
		return e.ExtractMetadata(file)
	default:
		spec, err := decoder.DecodeReader(file)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return spec, nil
	}
}

// ExtractPackage scans a .gem tar stream for metadata.gz and decodes it.
// Other members are skipped without being read.
func (e *Extractor) ExtractPackage(r io.Reader) (*gemspec.Specification, error) {
	tarReader := tar.NewReader(r)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading package: %w", err)
		}
		if header.Typeflag != tar.TypeReg || header.Name != MetadataEntry {
			continue
		}
		return e.ExtractMetadata(tarReader)
	}
	return nil, ErrNoMetadata
}

// ExtractMetadata gunzips r and decodes the specification inside.
func (e *Extractor) ExtractMetadata(r io.Reader) (*gemspec.Specification, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing metadata: %w", err)
	}
	defer gzReader.Close()

	spec, err := decoder.DecodeReader(gzReader)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return spec, nil
}

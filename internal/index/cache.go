package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// cacheFormat is bumped whenever the record layout changes.
const cacheFormat = 1

// DefaultTTL is how long a saved index is considered fresh.
const DefaultTTL = 24 * time.Hour

type cacheFile struct {
	Format  int           `cbor:"1,keyasint"`
	Created time.Time     `cbor:"2,keyasint"`
	Entries []entryRecord `cbor:"3,keyasint"`
}

type entryRecord struct {
	Name         string      `cbor:"1,keyasint"`
	Version      string      `cbor:"2,keyasint"`
	Platform     string      `cbor:"3,keyasint,omitempty"`
	Path         string      `cbor:"4,keyasint,omitempty"`
	Dependencies []depRecord `cbor:"5,keyasint,omitempty"`
}

type depRecord struct {
	Name        string      `cbor:"1,keyasint"`
	Kind        uint8       `cbor:"2,keyasint"`
	Constraints [][2]string `cbor:"3,keyasint,omitempty"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("index: CBOR encoder initialization failed: " + err.Error())
	}
}

// Save writes the index to path as zstd-compressed CBOR. The file is
// written to a temporary name first and renamed into place.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmpPath := path + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}

	err = idx.Encode(out)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Encode writes the index to w as zstd-compressed CBOR.
func (idx *Index) Encode(w io.Writer) error {
	file := cacheFile{Format: cacheFormat, Created: time.Now().UTC()}
	for _, e := range idx.Entries() {
		file.Entries = append(file.Entries, toRecord(e))
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if err := encMode.NewEncoder(zw).Encode(file); err != nil {
		zw.Close()
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing index: %w", err)
	}
	return nil
}

// Load reads an index written by Save.
func Load(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode reads an index written by Encode.
func Decode(r io.Reader) (*Index, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing index: %w", err)
	}
	defer zr.Close()

	var file cacheFile
	if err := cbor.NewDecoder(zr).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if file.Format != cacheFormat {
		return nil, fmt.Errorf("unsupported index format %d", file.Format)
	}

	idx := New()
	for _, rec := range file.Entries {
		e, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decoding index entry %s: %w", rec.Name, err)
		}
		idx.Add(e)
	}
	return idx, nil
}

// IsFresh reports whether the cache file at path exists and is younger
// than ttl.
func IsFresh(path string, ttl time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < ttl
}

func toRecord(e Entry) entryRecord {
	rec := entryRecord{
		Name:     e.Name,
		Version:  e.Version.String(),
		Platform: e.Platform,
		Path:     e.Path,
	}
	for _, d := range e.Dependencies {
		dep := depRecord{Name: d.Name, Kind: uint8(d.Kind)}
		for _, c := range d.Requirement.Constraints() {
			dep.Constraints = append(dep.Constraints, [2]string{c.Token, c.Version.String()})
		}
		rec.Dependencies = append(rec.Dependencies, dep)
	}
	return rec
}

func fromRecord(rec entryRecord) (Entry, error) {
	v, err := gemspec.ParseVersion(rec.Version)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Name:         rec.Name,
		Version:      v,
		Platform:     rec.Platform,
		Path:         rec.Path,
		Dependencies: []gemspec.Dependency{},
	}
	for _, dep := range rec.Dependencies {
		constraints := make([]gemspec.Constraint, 0, len(dep.Constraints))
		for _, pair := range dep.Constraints {
			cv, err := gemspec.ParseVersion(pair[1])
			if err != nil {
				return Entry{}, err
			}
			constraints = append(constraints, gemspec.Constraint{
				Op:      gemspec.ParseOperator(pair[0]),
				Token:   pair[0],
				Version: cv,
			})
		}
		e.Dependencies = append(e.Dependencies, gemspec.Dependency{
			Name:        dep.Name,
			Requirement: gemspec.NewRequirement(constraints...),
			Kind:        gemspec.DependencyKind(dep.Kind),
		})
	}
	return e, nil
}

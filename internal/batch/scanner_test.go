package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

func fakeExtract(calls *atomic.Int32) ExtractFunc {
	return func(path string) (*gemspec.Specification, error) {
		calls.Add(1)
		if filepath.Ext(path) == ".bad" {
			return nil, fmt.Errorf("decoding %s: broken", path)
		}
		return &gemspec.Specification{
			Name:    filepath.Base(path),
			Version: gemspec.MustParseVersion("1.0"),
		}, nil
	}
}

func TestScanner_Scan_PreservesOrder(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = fmt.Sprintf("gem%02d", i)
	}
	paths[7] = "broken.bad"

	// Act
	results := NewScanner(8, fakeExtract(&calls)).Scan(context.Background(), paths)

	// Assert
	require.Len(t, results, len(paths))
	assert.Equal(t, int32(len(paths)), calls.Load())
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		if i == 7 {
			assert.Error(t, r.Error)
			assert.Nil(t, r.Spec)
			continue
		}
		require.NoError(t, r.Error)
		assert.Equal(t, paths[i], r.Spec.Name)
	}

	assert.Len(t, Specs(results), len(paths)-1)
	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "broken.bad", failed[0].Path)
}

func TestScanner_Scan_Empty(t *testing.T) {
	var calls atomic.Int32
	results := NewScanner(0, fakeExtract(&calls)).Scan(context.Background(), nil)
	assert.Empty(t, results)
	assert.Zero(t, calls.Load())
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewScanner(2, fakeExtract(&calls)).Scan(ctx, []string{"a", "b", "c"})

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, errors.Is(r.Error, context.Canceled))
	}
	assert.Zero(t, calls.Load())
}

func TestDiscover(t *testing.T) {
	// Arrange
	root := t.TempDir()
	files := []string{
		"rack-3.0.8.gem",
		"vendor/cache/thor-1.3.0.gem",
		"vendor/cache/README.md",
		"specs/json.gemspec.yml",
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"all gems", []string{"**/*.gem"}, []string{"rack-3.0.8.gem", "vendor/cache/thor-1.3.0.gem"}},
		{"top level only", []string{"*.gem"}, []string{"rack-3.0.8.gem"}},
		{"several patterns", []string{"specs/*.yml", "vendor/**/*.gem"}, []string{"specs/json.gemspec.yml", "vendor/cache/thor-1.3.0.gem"}},
		{"no match", []string{"**/*.zip"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := Discover(root, tt.patterns)

			// Assert
			require.NoError(t, err)
			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(root, filepath.FromSlash(w)))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDiscover_InvalidPattern(t *testing.T) {
	_, err := Discover(t.TempDir(), []string{"[unterminated"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

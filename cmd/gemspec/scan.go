package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/gemspec/internal/batch"
	"github.com/frederic-klein/gemspec/internal/gem"
	"github.com/frederic-klein/gemspec/internal/index"
	"github.com/frederic-klein/gemspec/internal/report"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [DIR]",
		Short: "Decode every matching file under DIR concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			idx, err := a.scan(cmd, root)
			if err != nil {
				return err
			}
			if a.cfg.Cache != "" {
				if err := idx.Save(a.cfg.Cache); err != nil {
					return fmt.Errorf("writing index cache: %w", err)
				}
				a.logger.Info("wrote index cache", "path", a.cfg.Cache, "gems", idx.Len())
			}
			return nil
		},
	}
}

// scan decodes the files under root, prints the specifications and
// returns them as an index. Per-file failures are logged; scan fails only
// when nothing decoded.
func (a *app) scan(cmd *cobra.Command, root string) (*index.Index, error) {
	results, err := a.decodeDir(cmd, root)
	if err != nil {
		return nil, err
	}
	if err := report.NewWriter(cmd.OutOrStdout(), a.format).Specs(batch.Specs(results)); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	return indexOf(results), nil
}

func (a *app) decodeDir(cmd *cobra.Command, root string) ([]batch.Result, error) {
	paths, err := batch.Discover(root, a.cfg.Include)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("discovered files", "root", root, "count", len(paths))

	scanner := batch.NewScanner(a.cfg.Workers, gem.NewExtractor().Extract, batch.WithLogger(a.logger))
	results := scanner.Scan(cmd.Context(), paths)

	failed := batch.Failures(results)
	for _, r := range failed {
		a.logger.Warn("skipping", "path", r.Path, "err", r.Error)
	}
	if len(paths) > 0 && len(failed) == len(paths) {
		return nil, fmt.Errorf("no specification under %s could be decoded", root)
	}
	return results, nil
}

func indexOf(results []batch.Result) *index.Index {
	idx := index.New()
	for _, r := range results {
		if r.Error == nil {
			idx.AddSpec(r.Spec, r.Path)
		}
	}
	return idx
}

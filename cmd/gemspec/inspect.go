package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/gemspec/internal/decoder"
	"github.com/frederic-klein/gemspec/internal/gem"
	"github.com/frederic-klein/gemspec/internal/gemspec"
	"github.com/frederic-klein/gemspec/internal/report"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Decode specifications from .gem packages, metadata.gz or YAML files",
		Long:  "Decode each FILE and print its specification. Use - to read specification YAML from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args)
		},
	}
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	ext := gem.NewExtractor()
	specs := make([]*gemspec.Specification, 0, len(args))
	for _, path := range args {
		var (
			spec *gemspec.Specification
			err  error
		)
		if path == "-" {
			spec, err = decoder.DecodeReader(os.Stdin)
		} else {
			spec, err = ext.Extract(path)
		}
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", path, err)
		}
		a.logger.Debug("decoded", "path", path, "gem", spec.FullName())
		specs = append(specs, spec)
	}
	return report.NewWriter(cmd.OutOrStdout(), a.format).Specs(specs)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/gemspec/internal/gemfile"
	"github.com/frederic-klein/gemspec/internal/gemspec"
	"github.com/frederic-klein/gemspec/internal/index"
	"github.com/frederic-klein/gemspec/internal/lockfile"
	"github.com/frederic-klein/gemspec/internal/report"
	"github.com/frederic-klein/gemspec/internal/resolver"
)

// errUnresolved signals a completed check with unsatisfied dependencies.
var errUnresolved = errors.New("unresolved dependencies")

type checkOptions struct {
	gemfilePath string
	lockIn      string
	lockOut     string
}

func newCheckCmd(a *app) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [DIR]",
		Short: "Resolve a Gemfile against the gems under DIR",
		Long: "Resolve every gem declared in the Gemfile, and their runtime dependencies, " +
			"against locally available specifications. Sources, in order of preference: " +
			"--from-lock, a fresh --cache index, then a scan of DIR.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return a.runCheck(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.gemfilePath, "gemfile", "f", "./Gemfile", "Input Gemfile path")
	cmd.Flags().StringVar(&opts.lockIn, "from-lock", "", "Resolve against the gems pinned in this Gemfile.lock")
	cmd.Flags().StringVarP(&opts.lockOut, "lock", "l", "", "Write the resolution as a Gemfile.lock to this path")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, root string, opts *checkOptions) error {
	a.logger.Debug("parsing Gemfile", "path", opts.gemfilePath)
	parsed, err := gemfile.NewParser().Parse(opts.gemfilePath)
	if err != nil {
		return fmt.Errorf("parsing Gemfile: %w", err)
	}
	if len(parsed.Entries) == 0 {
		return fmt.Errorf("no gems declared in %s", opts.gemfilePath)
	}

	idx, err := a.loadIndex(cmd, root, opts)
	if err != nil {
		return err
	}
	a.logger.Debug("index ready", "gems", idx.Len())

	deps := make([]gemspec.Dependency, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		deps = append(deps, e.Dependency())
	}
	res := resolver.NewResolver(idx, a.logger).Resolve(deps)
	a.logger.Info("resolved", "gems", len(res.Selected), "unresolved", len(res.Unresolved))

	if opts.lockOut != "" {
		if err := writeLock(opts.lockOut, res.Selected, deps); err != nil {
			return err
		}
		a.logger.Info("wrote lock file", "path", opts.lockOut)
	}

	out := cmd.OutOrStdout()
	if a.format == report.Text {
		if err := lockfile.NewEmitter(out).Emit(res.Selected, deps); err != nil {
			return fmt.Errorf("writing resolution: %w", err)
		}
		for _, u := range res.Unresolved {
			line := fmt.Sprintf("%s (%s): %s", u.Name, u.Requirement, u.Reason)
			if u.RequiredBy != "" {
				line += ", required by " + u.RequiredBy
			}
			if u.Selected != "" {
				line += ", selected " + u.Selected
			}
			a.logger.Error(line)
		}
	} else if err := report.NewWriter(out, a.format).Value(summarize(res)); err != nil {
		return fmt.Errorf("writing resolution: %w", err)
	}

	if !res.OK() {
		return fmt.Errorf("%w: %d", errUnresolved, len(res.Unresolved))
	}
	return nil
}

func (a *app) loadIndex(cmd *cobra.Command, root string, opts *checkOptions) (*index.Index, error) {
	if opts.lockIn != "" {
		file, err := os.Open(opts.lockIn)
		if err != nil {
			return nil, fmt.Errorf("opening lock file: %w", err)
		}
		defer file.Close()
		lock, err := lockfile.NewParser(file).Parse()
		if err != nil {
			return nil, fmt.Errorf("parsing lock file: %w", err)
		}
		return lock.Index(), nil
	}

	if a.cfg.Cache != "" && index.IsFresh(a.cfg.Cache, a.cfg.CacheTTL) {
		idx, err := index.Load(a.cfg.Cache)
		if err == nil {
			a.logger.Debug("using index cache", "path", a.cfg.Cache)
			return idx, nil
		}
		a.logger.Warn("ignoring index cache", "path", a.cfg.Cache, "err", err)
	}

	results, err := a.decodeDir(cmd, root)
	if err != nil {
		return nil, err
	}
	idx := indexOf(results)
	if a.cfg.Cache != "" {
		if err := idx.Save(a.cfg.Cache); err != nil {
			a.logger.Warn("could not write index cache", "path", a.cfg.Cache, "err", err)
		}
	}
	return idx, nil
}

func writeLock(path string, selected []index.Entry, deps []gemspec.Dependency) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating lock file: %w", err)
	}
	defer out.Close()
	if err := lockfile.NewEmitter(out).Emit(selected, deps); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	return nil
}

type selectedGem struct {
	Name     string          `json:"name" yaml:"name" cbor:"name"`
	Version  gemspec.Version `json:"version" yaml:"version" cbor:"version"`
	Platform string          `json:"platform" yaml:"platform" cbor:"platform"`
	Path     string          `json:"path,omitempty" yaml:"path,omitempty" cbor:"path,omitempty"`
}

type checkSummary struct {
	Selected   []selectedGem         `json:"selected" yaml:"selected" cbor:"selected"`
	Unresolved []resolver.Unresolved `json:"unresolved" yaml:"unresolved" cbor:"unresolved"`
}

func summarize(res *resolver.Resolution) checkSummary {
	s := checkSummary{
		Selected:   make([]selectedGem, 0, len(res.Selected)),
		Unresolved: res.Unresolved,
	}
	if s.Unresolved == nil {
		s.Unresolved = []resolver.Unresolved{}
	}
	for _, e := range res.Selected {
		s.Selected = append(s.Selected, selectedGem{Name: e.Name, Version: e.Version, Platform: e.Platform, Path: e.Path})
	}
	return s
}

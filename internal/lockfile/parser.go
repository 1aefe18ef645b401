package lockfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/frederic-klein/gemspec/internal/gemspec"
	"github.com/frederic-klein/gemspec/internal/index"
)

var (
	sectionRe = regexp.MustCompile(`^([A-Z][A-Z ]*)$`)
	specRe    = regexp.MustCompile(`^    (\S+) \(([^)]+)\)$`)
	specDepRe = regexp.MustCompile(`^      (\S+)(?: \(([^)]+)\))?$`)
	itemRe    = regexp.MustCompile(`^  (\S+?)(!)?(?: \(([^)]+)\))?$`)
)

// Parser reads lock files.
type Parser struct {
	r io.Reader
}

// NewParser creates a new lock file parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads the GEM, PLATFORMS and DEPENDENCIES sections. Other
// sections (GIT, PATH, BUNDLED WITH) are skipped.
func (p *Parser) Parse() (*Lockfile, error) {
	lock := &Lockfile{}
	var current *index.Entry
	section := ""

	flush := func() {
		if current != nil {
			lock.Entries = append(lock.Entries, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(p.r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if matches := sectionRe.FindStringSubmatch(line); matches != nil {
			flush()
			section = matches[1]
			continue
		}

		switch section {
		case "GEM":
			if matches := specRe.FindStringSubmatch(line); matches != nil {
				flush()
				entry, err := newEntry(matches[1], matches[2])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				current = &entry
				continue
			}
			if matches := specDepRe.FindStringSubmatch(line); matches != nil && current != nil {
				dep, err := newDep(matches[1], matches[2])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				current.Dependencies = append(current.Dependencies, dep)
			}
		case "PLATFORMS":
			if matches := itemRe.FindStringSubmatch(line); matches != nil {
				lock.Platforms = append(lock.Platforms, matches[1])
			}
		case "DEPENDENCIES":
			if matches := itemRe.FindStringSubmatch(line); matches != nil {
				dep, err := newDep(matches[1], matches[3])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				lock.Dependencies = append(lock.Dependencies, dep)
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	return lock, nil
}

// newEntry splits "1.16.0-x86_64-linux" into version and platform.
func newEntry(name, text string) (index.Entry, error) {
	versionText, platform, found := strings.Cut(text, "-")
	if !found {
		platform = gemspec.DefaultPlatform
	}
	v, err := gemspec.ParseVersion(versionText)
	if err != nil {
		return index.Entry{}, fmt.Errorf("gem %s: %w", name, err)
	}
	return index.Entry{
		Name:         name,
		Version:      v,
		Platform:     platform,
		Dependencies: []gemspec.Dependency{},
	}, nil
}

func newDep(name, req string) (gemspec.Dependency, error) {
	r, err := gemspec.ParseRequirement(req)
	if err != nil {
		return gemspec.Dependency{}, fmt.Errorf("dependency %s: %w", name, err)
	}
	return gemspec.Dependency{Name: name, Requirement: r, Kind: gemspec.Runtime}, nil
}

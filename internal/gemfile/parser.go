// Package gemfile reads the gem declarations of a Gemfile.
//
// Only the declarative subset is understood: gem lines, group blocks and
// other do/end blocks (whose contents are read in the enclosing groups).
// Everything else is Ruby and is skipped.
package gemfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// DefaultGroup is the group of gems declared outside any group block.
const DefaultGroup = "default"

// Entry is one gem declaration.
type Entry struct {
	Name        string
	Requirement gemspec.Requirement
	Groups      []string
	Line        int
}

// Kind maps the entry's groups to a dependency kind: gems in the default
// group are runtime dependencies, everything else is development.
func (e Entry) Kind() gemspec.DependencyKind {
	for _, g := range e.Groups {
		if g == DefaultGroup {
			return gemspec.Runtime
		}
	}
	return gemspec.Development
}

// Dependency returns the entry as a gemspec dependency.
func (e Entry) Dependency() gemspec.Dependency {
	return gemspec.Dependency{Name: e.Name, Requirement: e.Requirement, Kind: e.Kind()}
}

// ParseResult contains the declarations in file order.
type ParseResult struct {
	Entries []Entry
}

// Dependencies returns the entries of the given kind.
func (r *ParseResult) Dependencies(kind gemspec.DependencyKind) []gemspec.Dependency {
	var deps []gemspec.Dependency
	for _, e := range r.Entries {
		if e.Kind() == kind {
			deps = append(deps, e.Dependency())
		}
	}
	return deps
}

// Parser parses Gemfile DSL.
type Parser struct{}

// NewParser creates a new Gemfile parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	gemRe    = regexp.MustCompile(`^\s*gem\s*\(?\s*['"]([^'"]+)['"]((?:\s*,\s*['"][^'"]*['"])*)`)
	stringRe = regexp.MustCompile(`['"]([^'"]*)['"]`)
	groupRe  = regexp.MustCompile(`^\s*group\s*\(?((?:\s*,?\s*:\w+)+)\s*\)?.*\bdo\s*(\|[^|]*\|)?\s*$`)
	symbolRe = regexp.MustCompile(`:(\w+)`)
	doRe     = regexp.MustCompile(`\bdo\s*(\|[^|]*\|)?\s*$`)
	blockRe  = regexp.MustCompile(`^\s*(if|unless|case|begin|while|until)\b`)
	endRe    = regexp.MustCompile(`^\s*end\b`)
)

// Parse parses the Gemfile at path.
func (p *Parser) Parse(path string) (*ParseResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening Gemfile: %w", err)
	}
	defer file.Close()
	return p.ParseReader(file)
}

// ParseReader parses Gemfile text from r.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{}
	stack := [][]string{{DefaultGroup}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}

		if matches := groupRe.FindStringSubmatch(line); matches != nil {
			var groups []string
			for _, m := range symbolRe.FindAllStringSubmatch(matches[1], -1) {
				groups = append(groups, m[1])
			}
			stack = append(stack, groups)
			continue
		}

		if endRe.MatchString(line) {
			if len(stack) == 1 {
				return nil, fmt.Errorf("line %d: unmatched end", lineNo)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		if matches := gemRe.FindStringSubmatch(line); matches != nil {
			entry, err := newEntry(matches[1], matches[2], stack[len(stack)-1], lineNo)
			if err != nil {
				return nil, err
			}
			result.Entries = append(result.Entries, entry)
			continue
		}

		// Other blocks (platforms, source, conditionals) keep the current groups.
		if doRe.MatchString(line) || blockRe.MatchString(line) {
			stack = append(stack, stack[len(stack)-1])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading Gemfile: %w", err)
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("line %d: unterminated block", lineNo)
	}
	return result, nil
}

func newEntry(name, args string, groups []string, lineNo int) (Entry, error) {
	var constraints []string
	for _, m := range stringRe.FindAllStringSubmatch(args, -1) {
		constraints = append(constraints, m[1])
	}
	req, err := gemspec.ParseRequirement(strings.Join(constraints, ", "))
	if err != nil {
		return Entry{}, fmt.Errorf("line %d: gem %s: %w", lineNo, name, err)
	}
	return Entry{
		Name:        name,
		Requirement: req,
		Groups:      append([]string(nil), groups...),
		Line:        lineNo,
	}, nil
}

// stripComment drops a trailing # comment that is not inside quotes.
func stripComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#':
			return line[:i]
		}
	}
	return line
}

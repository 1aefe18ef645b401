package decoder

import (
	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

var dependencyKinds = map[string]gemspec.DependencyKind{
	":runtime":     gemspec.Runtime,
	":development": gemspec.Development,
}

// decodeDependency reads the body of a Gem::Dependency mapping through its
// MappingEnd. "prerelease" and the legacy "version_requirements" are
// validated and dropped.
func decodeDependency(c *event.Cursor) (gemspec.Dependency, error) {
	var (
		dep  gemspec.Dependency
		seen = map[string]bool{}
	)
	for {
		key, ok, err := mappingKey(c, ContainerDependency)
		if err != nil {
			return gemspec.Dependency{}, err
		}
		if !ok {
			break
		}
		if seen[key] {
			return gemspec.Dependency{}, &DuplicateFieldError{Container: ContainerDependency, Field: key}
		}
		seen[key] = true

		switch key {
		case "name":
			if dep.Name, err = stringValue(c); err != nil {
				return gemspec.Dependency{}, err
			}
			if dep.Name == "" {
				return gemspec.Dependency{}, &ScalarCoercionError{Expected: "non-empty string", Got: "empty string"}
			}
		case "requirement":
			if dep.Requirement, err = taggedRequirement(c, ContainerDependency, key); err != nil {
				return gemspec.Dependency{}, err
			}
		case "type":
			value, err := stringValue(c)
			if err != nil {
				return gemspec.Dependency{}, err
			}
			kind, known := dependencyKinds[value]
			if !known {
				return gemspec.Dependency{}, &UnknownDependencyTypeError{Value: value}
			}
			dep.Kind = kind
		case "prerelease":
			if _, err := scalar(c); err != nil {
				return gemspec.Dependency{}, err
			}
		case "version_requirements":
			if _, err := taggedRequirement(c, ContainerDependency, key); err != nil {
				return gemspec.Dependency{}, err
			}
		default:
			return gemspec.Dependency{}, &UnknownFieldError{Container: ContainerDependency, Field: key}
		}
	}
	for _, field := range []string{"name", "requirement", "type"} {
		if !seen[field] {
			return gemspec.Dependency{}, &MissingFieldError{Container: ContainerDependency, Field: field}
		}
	}
	return dep, nil
}

// dependencyList reads a sequence of Gem::Dependency mappings.
func dependencyList(c *event.Cursor) ([]gemspec.Dependency, error) {
	if err := openSequence(c, ContainerSpecification, "dependencies"); err != nil {
		return nil, err
	}
	out := []gemspec.Dependency{}
	for {
		ev, err := next(c)
		if err != nil {
			return nil, err
		}
		if ev.Kind == event.SequenceEnd {
			return out, nil
		}
		if ev.Kind != event.MappingStart || !ev.IsRubyObject(tagDependency) {
			return nil, &UnexpectedEventError{Container: ContainerSpecification, Field: "dependencies", Expected: "!ruby/object:Gem::Dependency mapping", Got: ev}
		}
		dep, err := decodeDependency(c)
		if err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
}

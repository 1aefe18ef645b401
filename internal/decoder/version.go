package decoder

import (
	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

const (
	tagVersion       = "Gem::Version"
	tagRequirement   = "Gem::Requirement"
	tagDependency    = "Gem::Dependency"
	tagSpecification = "Gem::Specification"
)

// decodeVersion reads the body of a Gem::Version mapping through its
// MappingEnd. The tagged MappingStart must already have been consumed.
func decodeVersion(c *event.Cursor) (gemspec.Version, error) {
	var (
		text string
		seen bool
	)
	for {
		key, ok, err := mappingKey(c, ContainerVersion)
		if err != nil {
			return gemspec.Version{}, err
		}
		if !ok {
			break
		}
		if key != "version" {
			return gemspec.Version{}, &UnknownFieldError{Container: ContainerVersion, Field: key}
		}
		if seen {
			return gemspec.Version{}, &DuplicateFieldError{Container: ContainerVersion, Field: key}
		}
		if text, err = stringValue(c); err != nil {
			return gemspec.Version{}, err
		}
		seen = true
	}
	if !seen {
		return gemspec.Version{}, &MissingFieldError{Container: ContainerVersion, Field: "version"}
	}
	return gemspec.ParseVersion(text)
}

func taggedVersion(c *event.Cursor, container, field string) (gemspec.Version, error) {
	if err := openTagged(c, tagVersion, container, field); err != nil {
		return gemspec.Version{}, err
	}
	return decodeVersion(c)
}

package decoder

import (
	"time"

	"github.com/frederic-klein/gemspec/internal/event"
	"github.com/frederic-klein/gemspec/internal/gemspec"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05.999999999 Z",
	"2006-01-02 15:04:05.999999999 -07:00",
	time.RFC3339Nano,
	"2006-01-02",
}

// decodeSpecification reads the body of the root Gem::Specification mapping
// through its MappingEnd. Keys may come in any order.
func decodeSpecification(c *event.Cursor) (*gemspec.Specification, error) {
	var (
		spec gemspec.Specification
		seen checklist
	)
	for {
		key, ok, err := mappingKey(c, ContainerSpecification)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		f := lookupField(key)
		if f == fieldUnknown {
			return nil, &UnknownFieldError{Container: ContainerSpecification, Field: key}
		}
		if seen[f] {
			return nil, &DuplicateFieldError{Container: ContainerSpecification, Field: key}
		}
		seen[f] = true
		if err := decodeField(c, f, &spec); err != nil {
			return nil, err
		}
	}
	if f, missing := seen.firstMissing(); missing {
		return nil, &MissingFieldError{Container: ContainerSpecification, Field: f.String()}
	}
	return &spec, nil
}

func decodeField(c *event.Cursor, f field, spec *gemspec.Specification) error {
	var err error
	switch f {
	case fieldName:
		spec.Name, err = stringValue(c)
	case fieldPlatform:
		spec.Platform, err = stringValue(c)
	case fieldRubygemsVersion:
		spec.RubygemsVersion, err = stringValue(c)
	case fieldSummary:
		spec.Summary, err = stringValue(c)
	case fieldHomepage:
		spec.Homepage, err = stringValue(c)
	case fieldSpecificationVersion:
		var v Value
		if v, err = scalar(c); err == nil {
			spec.SpecificationVersion, err = v.AsInt()
		}

	case fieldVersion:
		spec.Version, err = taggedVersion(c, ContainerSpecification, f.String())
	case fieldRequiredRubyVersion:
		spec.RequiredRubyVersion, err = optionalRequirement(c, f)
	case fieldRequiredRubygemsVersion:
		spec.RequiredRubygemsVersion, err = optionalRequirement(c, f)
	case fieldDependencies:
		spec.Dependencies, err = dependencyList(c)
	case fieldMetadata:
		spec.Metadata, err = metadataMap(c)

	case fieldAuthors:
		spec.Authors, err = sequenceField(c, f)
	case fieldCertChain:
		spec.CertChain, err = sequenceField(c, f)
	case fieldExecutables:
		spec.Executables, err = sequenceField(c, f)
	case fieldExtensions:
		spec.Extensions, err = sequenceField(c, f)
	case fieldExtraRdocFiles:
		spec.ExtraRdocFiles, err = sequenceField(c, f)
	case fieldFiles:
		spec.Files, err = sequenceField(c, f)
	case fieldLicenses:
		spec.Licenses, err = sequenceField(c, f)
	case fieldRdocOptions:
		spec.RdocOptions, err = sequenceField(c, f)
	case fieldRequirePaths:
		spec.RequirePaths, err = sequenceField(c, f)
	case fieldRequirements:
		spec.Requirements, err = sequenceField(c, f)
	case fieldTestFiles:
		spec.TestFiles, err = sequenceField(c, f)
	case fieldEmail:
		spec.Email, err = emailField(c)

	case fieldAutorequire:
		spec.Autorequire, err = optionalString(c)
	case fieldBindir:
		spec.Bindir, err = optionalString(c)
	case fieldDescription:
		spec.Description, err = optionalString(c)
	case fieldPostInstallMessage:
		spec.PostInstallMessage, err = optionalString(c)
	case fieldSigningKey:
		spec.SigningKey, err = optionalString(c)
	case fieldRubyforgeProject:
		spec.RubyforgeProject, err = optionalString(c)
	case fieldDefaultExecutable:
		spec.DefaultExecutable, err = optionalString(c)
	case fieldOriginalPlatform:
		spec.OriginalPlatform, err = optionalString(c)
	case fieldHasRdoc:
		spec.HasRdoc, err = optionalBool(c)
	case fieldDate:
		spec.Date, err = dateField(c)

	default:
		err = &UnknownFieldError{Container: ContainerSpecification, Field: f.String()}
	}
	return err
}

func sequenceField(c *event.Cursor, f field) ([]string, error) {
	if err := openSequence(c, ContainerSpecification, f.String()); err != nil {
		return nil, err
	}
	return stringSequence(c)
}

func optionalString(c *event.Cursor) (*string, error) {
	v, err := scalar(c)
	if err != nil {
		return nil, err
	}
	return v.AsOptionalString()
}

func optionalBool(c *event.Cursor) (*bool, error) {
	v, err := scalar(c)
	if err != nil {
		return nil, err
	}
	if v.Kind == Null {
		return nil, nil
	}
	b, err := v.AsBool()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// optionalRequirement accepts a tagged Gem::Requirement or null.
func optionalRequirement(c *event.Cursor, f field) (*gemspec.Requirement, error) {
	ev, err := peek(c)
	if err != nil {
		return nil, err
	}
	if ev.Kind == event.Scalar {
		v, err := scalar(c)
		if err != nil {
			return nil, err
		}
		if v.Kind != Null {
			return nil, &UnexpectedEventError{Container: ContainerSpecification, Field: f.String(), Expected: "!ruby/object:Gem::Requirement mapping", Got: ev}
		}
		return nil, nil
	}
	req, err := taggedRequirement(c, ContainerSpecification, f.String())
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// emailField accepts a single address, a list of addresses, or null.
func emailField(c *event.Cursor) ([]string, error) {
	ev, err := peek(c)
	if err != nil {
		return nil, err
	}
	if ev.Kind == event.SequenceStart {
		return sequenceField(c, fieldEmail)
	}
	s, err := optionalString(c)
	if err != nil || s == nil {
		return nil, err
	}
	return []string{*s}, nil
}

func dateField(c *event.Cursor) (*time.Time, error) {
	v, err := scalar(c)
	if err != nil {
		return nil, err
	}
	if v.Kind == Null {
		return nil, nil
	}
	text, err := v.AsString()
	if err != nil {
		return nil, err
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &ScalarCoercionError{Expected: "timestamp", Got: v.describe()}
}

// metadataMap reads an untagged mapping of string keys to string values.
func metadataMap(c *event.Cursor) (map[string]string, error) {
	ev, err := next(c)
	if err != nil {
		return nil, err
	}
	if ev.Kind != event.MappingStart || ev.Tag != "" {
		return nil, &UnexpectedEventError{Container: ContainerSpecification, Field: "metadata", Expected: "mapping", Got: ev}
	}
	out := map[string]string{}
	for {
		key, ok, err := mappingKey(c, ContainerMetadata)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if _, dup := out[key]; dup {
			return nil, &DuplicateFieldError{Container: ContainerMetadata, Field: key}
		}
		if out[key], err = stringValue(c); err != nil {
			return nil, err
		}
	}
}

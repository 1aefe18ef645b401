package decoder

// field enumerates the keys a Gem::Specification mapping may carry.
type field int

const (
	fieldUnknown field = iota
	fieldName
	fieldVersion
	fieldPlatform
	fieldAuthors
	fieldAutorequire
	fieldBindir
	fieldCertChain
	fieldDate
	fieldDependencies
	fieldDescription
	fieldEmail
	fieldExecutables
	fieldExtensions
	fieldExtraRdocFiles
	fieldFiles
	fieldHomepage
	fieldLicenses
	fieldMetadata
	fieldPostInstallMessage
	fieldRdocOptions
	fieldRequirePaths
	fieldRequiredRubyVersion
	fieldRequiredRubygemsVersion
	fieldRequirements
	fieldRubygemsVersion
	fieldSigningKey
	fieldSpecificationVersion
	fieldSummary
	fieldTestFiles
	fieldRubyforgeProject
	fieldDefaultExecutable
	fieldHasRdoc
	fieldOriginalPlatform

	fieldCount
)

var fieldNames = [fieldCount]string{
	fieldName:                    "name",
	fieldVersion:                 "version",
	fieldPlatform:                "platform",
	fieldAuthors:                 "authors",
	fieldAutorequire:             "autorequire",
	fieldBindir:                  "bindir",
	fieldCertChain:               "cert_chain",
	fieldDate:                    "date",
	fieldDependencies:            "dependencies",
	fieldDescription:             "description",
	fieldEmail:                   "email",
	fieldExecutables:             "executables",
	fieldExtensions:              "extensions",
	fieldExtraRdocFiles:          "extra_rdoc_files",
	fieldFiles:                   "files",
	fieldHomepage:                "homepage",
	fieldLicenses:                "licenses",
	fieldMetadata:                "metadata",
	fieldPostInstallMessage:      "post_install_message",
	fieldRdocOptions:             "rdoc_options",
	fieldRequirePaths:            "require_paths",
	fieldRequiredRubyVersion:     "required_ruby_version",
	fieldRequiredRubygemsVersion: "required_rubygems_version",
	fieldRequirements:            "requirements",
	fieldRubygemsVersion:         "rubygems_version",
	fieldSigningKey:              "signing_key",
	fieldSpecificationVersion:    "specification_version",
	fieldSummary:                 "summary",
	fieldTestFiles:               "test_files",
	fieldRubyforgeProject:        "rubyforge_project",
	fieldDefaultExecutable:       "default_executable",
	fieldHasRdoc:                 "has_rdoc",
	fieldOriginalPlatform:        "original_platform",
}

var fieldsByName = func() map[string]field {
	m := make(map[string]field, fieldCount)
	for f := fieldName; f < fieldCount; f++ {
		m[fieldNames[f]] = f
	}
	return m
}()

// lookupField maps raw key text to a field; unrecognized keys map to
// fieldUnknown.
func lookupField(key string) field {
	return fieldsByName[key]
}

func (f field) String() string {
	if f > fieldUnknown && f < fieldCount {
		return fieldNames[f]
	}
	return "unknown"
}

// mandatoryFields must all be present in a specification, checked in this
// order.
var mandatoryFields = []field{
	fieldName,
	fieldVersion,
	fieldPlatform,
	fieldDependencies,
	fieldRubygemsVersion,
	fieldSpecificationVersion,
	fieldSummary,
	fieldRequirePaths,
	fieldHomepage,
	fieldLicenses,
	fieldFiles,
	fieldAuthors,
}

// checklist records which fields a mapping has carried.
type checklist [fieldCount]bool

func (c *checklist) firstMissing() (field, bool) {
	for _, f := range mandatoryFields {
		if !c[f] {
			return f, true
		}
	}
	return fieldUnknown, false
}

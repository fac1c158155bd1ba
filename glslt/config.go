/*
Package glslt is the public entry point to the GLSLT template
transformation core: Config describes a transformation run, Transform
runs the full classify → resolve → mangle → instantiate → prune → emit
pipeline, and Introspect answers read-only queries about a unit; only a
query for a specialization's mangled name runs instantiation.
*/
package glslt

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// CurrentSchemaVersion is the newest config schema this build
// understands. A Config whose SchemaVersion is syntactically valid
// semver but newer than this is rejected rather than silently
// misinterpreted.
const CurrentSchemaVersion = "v1.0.0"

// DefaultIdentifierPrefix is used when Config.IdentifierPrefix is
// empty (spec.md §6).
const DefaultIdentifierPrefix = "_glslt_"

// Config configures one Transform run (spec.md §6's "Input contract").
type Config struct {
	// IdentifierPrefix prefixes every mangled specialization name.
	// Defaults to DefaultIdentifierPrefix when empty. Must be a valid
	// GLSL identifier prefix: starts with a letter or underscore,
	// contains only letters, digits and underscores.
	IdentifierPrefix string `validate:"omitempty,glslident"`

	// KeepFns, if non-empty, activates minifying mode: only the
	// transitive closure of these root identifiers is emitted.
	KeepFns []string `validate:"omitempty,dive,glslident"`

	// SchemaVersion gates config compatibility. Empty defaults to
	// CurrentSchemaVersion.
	SchemaVersion string

	// Trace, if non-nil, is called for every Requested/Resolving/
	// Instantiated/Emitted state transition the run passes through (one
	// call per transition, name is the template name for Requested and
	// Resolving, the mangled specialization name for Instantiated, and
	// the declaration's name for Emitted, which fires for every emitted
	// declaration, not only specializations).
	// Intended for a driver's -v/--verbose output; Transform never reads
	// it back, so a nil Trace costs nothing.
	Trace func(event, name string) `validate:"-"`
}

// DefaultConfig returns the zero-configuration transform: identifier
// prefix "_glslt_", full-emission mode, current schema version.
func DefaultConfig() Config {
	return Config{IdentifierPrefix: DefaultIdentifierPrefix, SchemaVersion: CurrentSchemaVersion}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("glslident", validateGLSLIdent); err != nil {
		// Registration only fails for a malformed tag name, which
		// "glslident" is not; a failure here means the tag literal was
		// edited without checking validator's naming rules.
		panic(err)
	}
	return v
}

func validateGLSLIdent(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			continue
		case r >= '0' && r <= '9' && i > 0:
			continue
		default:
			return false
		}
	}
	return true
}

// normalize fills in defaults and validates cfg, returning the
// effective configuration to use for the run.
func normalize(cfg Config) (Config, error) {
	if cfg.IdentifierPrefix == "" {
		cfg.IdentifierPrefix = DefaultIdentifierPrefix
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = CurrentSchemaVersion
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, errors.Wrap(err, "invalid glslt config")
	}

	version := "v" + trimLeadingV(cfg.SchemaVersion)
	if !semver.IsValid(version) {
		return cfg, errors.Errorf("schema_version %q is not valid semver", cfg.SchemaVersion)
	}
	if semver.Compare(version, CurrentSchemaVersion) > 0 {
		return cfg, errors.Errorf("schema_version %q is newer than this build supports (%q)", cfg.SchemaVersion, CurrentSchemaVersion)
	}
	return cfg, nil
}

func trimLeadingV(s string) string {
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		return s[1:]
	}
	return s
}

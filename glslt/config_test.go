package glslt

import "testing"

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg, err := normalize(Config{})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if cfg.IdentifierPrefix != DefaultIdentifierPrefix {
		t.Errorf("IdentifierPrefix = %q, want default %q", cfg.IdentifierPrefix, DefaultIdentifierPrefix)
	}
	if cfg.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", cfg.SchemaVersion, CurrentSchemaVersion)
	}
}

func TestNormalizeRejectsBadIdentifierPrefix(t *testing.T) {
	_, err := normalize(Config{IdentifierPrefix: "1bad"})
	if err == nil {
		t.Fatalf("expected an error for an identifier prefix starting with a digit")
	}
}

func TestNormalizeRejectsBadKeepFn(t *testing.T) {
	_, err := normalize(Config{KeepFns: []string{"ok_name", "123bad"}})
	if err == nil {
		t.Fatalf("expected an error for a malformed keep_fns entry")
	}
}

func TestNormalizeRejectsNewerSchemaVersion(t *testing.T) {
	_, err := normalize(Config{SchemaVersion: "v99.0.0"})
	if err == nil {
		t.Fatalf("expected an error for a schema version newer than this build supports")
	}
}

func TestNormalizeRejectsInvalidSemver(t *testing.T) {
	_, err := normalize(Config{SchemaVersion: "not-a-version"})
	if err == nil {
		t.Fatalf("expected an error for a non-semver schema version")
	}
}

func TestNormalizeAcceptsOlderSchemaVersion(t *testing.T) {
	cfg, err := normalize(Config{SchemaVersion: "v0.9.0"})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if cfg.SchemaVersion != "v0.9.0" {
		t.Errorf("SchemaVersion = %q, want v0.9.0", cfg.SchemaVersion)
	}
}

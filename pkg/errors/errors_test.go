package errors

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
)

// failures builds the errors renoma actually reports, wrapped the way the
// CLI passes them up.
func failures(t *testing.T) map[string]error {
	t.Helper()
	_, reErr := regexp.Compile("(unused")
	if reErr == nil {
		t.Fatal("expected regexp compile error")
	}
	return map[string]error{
		"missing root manifest": New(ErrCodeManifestNotFound, "No closest package.json found from %s", "/work/app"),
		"invalid rule pattern":  Wrap(ErrCodeInvalidRule, reErr, "invalid rule pattern %q", "/(unused/"),
		"bad extension":         ValidateExtension("scss"),
		"wrapped by a command":  fmt.Errorf("check: %w", New(ErrCodeInvalidFormat, "unknown format %q", "xml")),
	}
}

func TestFailureCodes(t *testing.T) {
	errs := failures(t)
	tests := []struct {
		name string
		code Code
	}{
		{"missing root manifest", ErrCodeManifestNotFound},
		{"invalid rule pattern", ErrCodeInvalidRule},
		{"bad extension", ErrCodeInvalidInput},
		{"wrapped by a command", ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errs[tt.name]
			if !Is(err, tt.code) {
				t.Errorf("Is(%v, %s) = false", err, tt.code)
			}
			if got := GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if Is(err, ErrCodeInternal) {
				t.Error("Is() matched an unrelated code")
			}
		})
	}
}

func TestFailureMessages(t *testing.T) {
	errs := failures(t)
	tests := []struct {
		name     string
		user     string
		detailed string
	}{
		{
			name:     "missing root manifest",
			user:     "No closest package.json found from /work/app",
			detailed: "MANIFEST_NOT_FOUND: No closest package.json found from /work/app",
		},
		{
			name:     "invalid rule pattern",
			user:     `invalid rule pattern "/(unused/": error parsing regexp: missing closing ): ` + "`(unused`",
			detailed: `INVALID_RULE: invalid rule pattern "/(unused/": error parsing regexp: missing closing ): ` + "`(unused`",
		},
		{
			name:     "bad extension",
			user:     `extension must start with '.': "scss"`,
			detailed: `INVALID_INPUT: extension must start with '.': "scss"`,
		},
		{
			name:     "wrapped by a command",
			user:     `unknown format "xml"`,
			detailed: `check: INVALID_FORMAT: unknown format "xml"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errs[tt.name]
			if got := UserMessage(err); got != tt.user {
				t.Errorf("UserMessage() = %q, want %q", got, tt.user)
			}
			if got := err.Error(); got != tt.detailed {
				t.Errorf("Error() = %q, want %q", got, tt.detailed)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	_, reErr := regexp.Compile("[")
	err := Wrap(ErrCodeInvalidRule, reErr, "invalid rule pattern %q", "/[/")

	if !errors.Is(err, reErr) {
		t.Error("errors.Is should reach the regexp error")
	}
	if errors.Unwrap(err) != reErr {
		t.Error("Unwrap() should return the cause")
	}
}

func TestPlainErrors(t *testing.T) {
	plain := errors.New("open package.json: permission denied")

	if Is(plain, ErrCodeInvalidManifest) || Is(nil, ErrCodeInvalidManifest) {
		t.Error("Is() should be false for errors without a code")
	}
	if GetCode(plain) != "" || GetCode(nil) != "" {
		t.Error("GetCode() should be empty for errors without a code")
	}
	if got := UserMessage(plain); got != plain.Error() {
		t.Errorf("UserMessage() = %q, want the plain message", got)
	}
}

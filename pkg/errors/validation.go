package errors

import (
	"strings"
	"unicode"
)

// maxPackageNameLength mirrors the npm registry limit on package names.
const maxPackageNameLength = 214

// ValidatePackageName validates a dependency name before it is joined onto
// an install directory. It rejects names that could escape node_modules.
//
// Accepted shapes are a single segment ("lodash") or a scoped name with
// exactly one separator ("@babel/core"). Case is not checked; legacy
// packages with upper-case names still exist on disk.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > maxPackageNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", "\\")
	}

	segments := strings.Split(name, "/")
	switch {
	case len(segments) > 2:
		return New(ErrCodeInvalidPackage, "package name has too many segments: %q", name)
	case len(segments) == 2 && !strings.HasPrefix(name, "@"):
		return New(ErrCodeInvalidPackage, "only scoped package names may contain '/': %q", name)
	}

	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || seg == "@" {
			return New(ErrCodeInvalidPackage, "package name contains an invalid segment: %q", name)
		}
	}

	return nil
}

// ValidateExtension validates a source file extension from configuration.
// Extensions must start with a dot and contain no path separators.
func ValidateExtension(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return New(ErrCodeInvalidInput, "extension must start with '.': %q", ext)
	}
	if strings.ContainsAny(ext, "/\\") || strings.Contains(ext[1:], ".") {
		return New(ErrCodeInvalidInput, "extension must be a single suffix: %q", ext)
	}
	return nil
}

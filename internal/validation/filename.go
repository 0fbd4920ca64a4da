// Package validation provides shared checks for configured file names.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateArtifactName checks that a chart file name is a plain PNG
// base name that joins safely into the output directory.
func ValidateArtifactName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("artifact name %q must be a plain file name", name)
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return fmt.Errorf("artifact name %q must not be a hidden or relative name", name)
	}
	if strings.ToLower(filepath.Ext(name)) != ".png" {
		return fmt.Errorf("artifact name %q must have a .png extension", name)
	}
	return nil
}

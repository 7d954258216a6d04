// Package security provides validation for paths and commands taken from configuration.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath validates a relative file path to prevent directory traversal.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	// Check for dangerous patterns
	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute paths are not allowed")
	}

	// Ensure the final path would be within baseDir
	finalPath := filepath.Join(baseDir, filePath)
	cleanFinal := filepath.Clean(finalPath)
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// ValidateCommand checks an argument vector before it is executed.
// The program must be a bare executable name or a clean path, and no
// argument may contain a NUL byte.
func ValidateCommand(argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return fmt.Errorf("empty command")
	}

	program := argv[0]
	if strings.ContainsAny(program, "|&;`$()<>") {
		return fmt.Errorf("command %q contains shell metacharacters", program)
	}
	if strings.ContainsRune(program, filepath.Separator) && filepath.Clean(program) != program {
		return fmt.Errorf("command path %q is not clean", program)
	}

	for i, arg := range argv {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("argument %d contains a NUL byte", i)
		}
	}

	return nil
}

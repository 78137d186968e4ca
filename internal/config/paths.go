package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath returns ship.yaml inside buildRoot.
func DefaultConfigPath(buildRoot string) string {
	return filepath.Join(buildRoot, DefaultConfigFile)
}

// ResolveUnder returns path unchanged when absolute, otherwise joined
// onto root. A leading ~ is expanded first.
func ResolveUnder(root, path string) (string, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Join(root, expanded), nil
}

// ExpandPath expands a leading ~ or ~/ to the home directory. ~user forms
// are not supported and come back unchanged.
func ExpandPath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}

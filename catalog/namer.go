package catalog

import (
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// FolderNamer names models after their folder id. Used in
// non-interactive environments (CI, cron).
type FolderNamer struct{}

// Name returns the id unchanged.
func (FolderNamer) Name(id string) (string, error) {
	return id, nil
}

// TerminalNamer prompts the operator for a display name when a new model
// folder is first registered. Falls back to the folder id when the
// terminal is non-interactive or the operator enters nothing.
type TerminalNamer struct{}

// NewTerminalNamer creates a new TerminalNamer.
func NewTerminalNamer() *TerminalNamer {
	return &TerminalNamer{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (n *TerminalNamer) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Name asks the operator for a display name for the new model.
func (n *TerminalNamer) Name(id string) (string, error) {
	if !n.IsInteractive() {
		return id, nil
	}

	var name string
	err := huh.NewInput().
		Title("New model discovered").
		Description("Display name for model " + id).
		Placeholder(id).
		Value(&name).
		Run()
	if err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return id, nil
	}
	return name, nil
}

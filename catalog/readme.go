package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

const modelsHeading = "## Models"

// UpdateReadme rewrites the "## Models" table in a README to match the
// manifest. The section spans from the heading to the next "## " heading
// or the end of the file. A missing README is a no-op, and a README
// without the heading is left untouched.
func UpdateReadme(path string, m *entities.Manifest) error {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read readme: %w", err)
	}

	text := string(content)
	start := strings.Index(text, modelsHeading)
	if start < 0 {
		return nil
	}

	end := len(text)
	if next := strings.Index(text[start+len(modelsHeading):], "\n## "); next >= 0 {
		end = start + len(modelsHeading) + next + 1
	}

	updated := text[:start] + modelsTable(m) + text[end:]
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write readme: %w", err)
	}
	return nil
}

func modelsTable(m *entities.Manifest) string {
	var b strings.Builder
	b.WriteString(modelsHeading + "\n\n")
	b.WriteString("| ID | Name | Size |\n")
	b.WriteString("|----|------|------|\n")
	for _, entry := range m.Models {
		var total int64
		for _, desc := range entry.Files {
			total += desc.Size
		}
		fmt.Fprintf(&b, "| %s | %s | %.1fMB |\n",
			entry.ID, entry.Name, float64(total)/(1024*1024))
	}
	b.WriteString("\n")
	return b.String()
}

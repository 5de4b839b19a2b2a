package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

func readmeManifest() entities.Manifest {
	files := func(policy, vision int64) map[string]entities.FileDescriptor {
		return map[string]entities.FileDescriptor{
			"driving_policy.onnx": {Size: policy, SHA256: values.ComputeDigest([]byte("p")).String()},
			"driving_vision.onnx": {Size: vision, SHA256: values.ComputeDigest([]byte("v")).String()},
		}
	}
	return entities.Manifest{
		Version: entities.SchemaVersion,
		Models: []entities.ModelEntry{
			{ID: "wmiv1", Name: "WMIv1", BaseURL: "https://m.example.com/wmiv1",
				Files: files(1<<20, 2<<20), MinimumSelectorVersion: 1},
			{ID: "wmiv2", Name: "WMIv2", BaseURL: "https://m.example.com/wmiv2",
				Files: files(3<<20, 4<<20), MinimumSelectorVersion: 1},
		},
	}
}

func Test_UpdateReadme_RewritesModelsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte(
		"# Project\n\nIntro text.\n\n## Models\n\n| ID | Name | Size |\n|----|------|------|\n| stale | Old | 0.1MB |\n\n## Usage\n\nRun it.\n",
	), 0o644))

	m := readmeManifest()
	require.NoError(t, UpdateReadme(path, &m))

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(updated)

	assert.Contains(t, content, "| wmiv1 | WMIv1 | 3.0MB |")
	assert.Contains(t, content, "| wmiv2 | WMIv2 | 7.0MB |")
	assert.NotContains(t, content, "stale")

	// Surrounding sections survive the rewrite.
	assert.Contains(t, content, "Intro text.")
	assert.Contains(t, content, "## Usage\n\nRun it.\n")
	assert.Equal(t, 1, strings.Count(content, "## Models"))
}

func Test_UpdateReadme_SectionAtEndOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte(
		"# Project\n\n## Models\n\nold table\n",
	), 0o644))

	m := readmeManifest()
	require.NoError(t, UpdateReadme(path, &m))

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(updated), "| wmiv2 | WMIv2 | 7.0MB |")
	assert.NotContains(t, string(updated), "old table")
}

func Test_UpdateReadme_MissingFileIsNoOp(t *testing.T) {
	m := readmeManifest()
	require.NoError(t, UpdateReadme(filepath.Join(t.TempDir(), "README.md"), &m))
}

func Test_UpdateReadme_NoModelsHeadingLeavesFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	original := "# Project\n\nNo table here.\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	m := readmeManifest()
	require.NoError(t, UpdateReadme(path, &m))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/parser"
)

const jsonManifest = `{
  "version": 1,
  "updated_at": "2026-08-23T10:00:00Z",
  "models": [
    {
      "id": "wmiv2",
      "name": "WMIv2",
      "base_url": "https://models.example.com/wmiv2",
      "files": {
        "driving_policy.onnx": {"size": 10, "sha256": "abababababababababababababababababababababababababababababababab"},
        "driving_vision.onnx": {"size": 20, "sha256": "cdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd"}
      },
      "minimum_selector_version": 1
    }
  ],
  "key_id": "key_2026_01",
  "signature": "c2lnbmF0dXJl"
}`

const yamlManifest = `
version: 1
updated_at: "2026-08-23T10:00:00Z"
models:
  - id: wmiv2
    name: WMIv2
    base_url: https://models.example.com/wmiv2
    files:
      driving_policy.onnx:
        size: 10
        sha256: abababababababababababababababababababababababababababababababab
      driving_vision.onnx:
        size: 20
        sha256: cdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd
    minimum_selector_version: 1
key_id: key_2026_01
signature: c2lnbmF0dXJl
`

func Test_JSONManifestParser(t *testing.T) {
	m, err := parser.NewJSONManifestParser().Parse([]byte(jsonManifest))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "key_2026_01", m.KeyID)
	require.Len(t, m.Models, 1)
	assert.Equal(t, "wmiv2", m.Models[0].ID)
	assert.Equal(t, int64(10), m.Models[0].Files["driving_policy.onnx"].Size)
	require.NoError(t, m.Validate())
}

func Test_JSONManifestParser_UnknownField(t *testing.T) {
	_, err := parser.NewJSONManifestParser().Parse([]byte(`{"version":1,"bogus":true}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrStructuralInvalid))
}

func Test_JSONManifestParser_Garbage(t *testing.T) {
	_, err := parser.NewJSONManifestParser().Parse([]byte("{nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrStructuralInvalid))
}

func Test_YamlManifestParser(t *testing.T) {
	m, err := parser.NewYamlManifestParser().Parse([]byte(yamlManifest))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version)
	require.Len(t, m.Models, 1)
	assert.Equal(t, "WMIv2", m.Models[0].Name)
	require.NoError(t, m.Validate())
}

func Test_Parsers_AgreeOnContent(t *testing.T) {
	fromJSON, err := parser.NewJSONManifestParser().Parse([]byte(jsonManifest))
	require.NoError(t, err)
	fromYAML, err := parser.NewYamlManifestParser().Parse([]byte(yamlManifest))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
}

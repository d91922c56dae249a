package kwfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Keyword file loader: text and YAML formats
// =============================================================================

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Text(t *testing.T) {
	path := writeFile(t, "words.txt", "# profanity list\nhe\r\nshe\n\nhis hers\n")
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"he", "she", "his hers"}, f.Keywords)
	assert.Empty(t, f.Replacement)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "words.yaml", "keywords:\n  - 伟大\n  - 公园\n  - \"\"\nreplacement: \"-\"\n")
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"伟大", "公园"}, f.Keywords)
	assert.Equal(t, "-", f.Replacement)
}

func TestLoad_EmptyFileRejected(t *testing.T) {
	path := writeFile(t, "empty.txt", "# nothing here\n\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "bad.yml", "keywords: [unclosed\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("a.yaml"))
	assert.True(t, IsYAML("A.YML"))
	assert.False(t, IsYAML("a.txt"))
}

func TestParseText_OverlongLineIsError(t *testing.T) {
	content := "alpha\n" + strings.Repeat("x", 2*MaxLineBytes) + "\nbeta\n"

	f, err := ParseText([]byte(content))
	assert.Error(t, err)
	assert.Nil(t, f)

	_, err = Load(writeFile(t, "long.txt", content))
	assert.Error(t, err, "a truncated keyword list must not load")
}

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  from-file\n"), 0o600))
	emptyFile := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(emptyFile, []byte("\n"), 0o600))

	t.Setenv("TEST_GEMINI_KEY", " from-env ")
	t.Setenv("TEST_EMPTY_KEY", "")

	tests := []struct {
		name    string
		src     Source
		expect  string
		errPart string
	}{
		{name: "file wins", src: Source{File: keyFile, Value: "inline", Env: "TEST_GEMINI_KEY"}, expect: "from-file"},
		{name: "inline before env", src: Source{Value: " inline ", Env: "TEST_GEMINI_KEY"}, expect: "inline"},
		{name: "env", src: Source{Env: "TEST_GEMINI_KEY"}, expect: "from-env"},
		{name: "empty env", src: Source{Name: "gemini api key", Env: "TEST_EMPTY_KEY"}, errPart: "gemini api key is not configured (TEST_EMPTY_KEY is empty)"},
		{name: "empty file", src: Source{File: emptyFile}, errPart: "is empty"},
		{name: "missing file", src: Source{File: filepath.Join(dir, "missing")}, errPart: "reading secret from file"},
		{name: "nothing", src: Source{}, errPart: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.errPart != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errPart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

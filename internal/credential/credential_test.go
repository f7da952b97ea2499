package credential

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Setenv("FIRST_TOKEN", "")
	t.Setenv("SECOND_TOKEN", " second ")

	v, src := Lookup(" flag ", "FIRST_TOKEN", "SECOND_TOKEN")
	assert.Equal(t, "flag", v)
	assert.Equal(t, SourceExplicit, src)

	v, src = Lookup("", "FIRST_TOKEN", "SECOND_TOKEN")
	assert.Equal(t, "second", v)
	assert.Equal(t, EnvSource("SECOND_TOKEN"), src)

	t.Setenv("FIRST_TOKEN", "first")
	v, src = Lookup("", "FIRST_TOKEN", "SECOND_TOKEN")
	assert.Equal(t, "first", v)
	assert.Equal(t, Source("env:FIRST_TOKEN"), src)

	v, src = Lookup("  ", "UNSET_TOKEN_FOR_TEST")
	assert.Empty(t, v)
	assert.Empty(t, src)
}

func writeHelper(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test uses a shell script helper")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
	return dir
}

func TestHelperToken(t *testing.T) {
	t.Run("prints token", func(t *testing.T) {
		t.Setenv("PATH", writeHelper(t, "tokhelper", "#!/bin/sh\necho \"$1-$HELPER_MODE\"\n"))

		tok, ok, err := Helper{Name: "tokhelper", Args: []string{"abc"}, Env: []string{"HELPER_MODE=x"}}.Token(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc-x", tok)
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())

		tok, ok, err := Helper{Name: "tokhelper"}.Token(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, tok)
	})

	t.Run("non-zero exit is no token", func(t *testing.T) {
		t.Setenv("PATH", writeHelper(t, "tokhelper", "#!/bin/sh\necho 'not logged in' >&2\nexit 1\n"))

		_, ok, err := Helper{Name: "tokhelper"}.Token(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("multi-line output is an error", func(t *testing.T) {
		t.Setenv("PATH", writeHelper(t, "tokhelper", "#!/bin/sh\nprintf 'a\\nb\\n'\n"))

		_, _, err := Helper{Name: "tokhelper"}.Token(context.Background())
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Setenv("PATH", writeHelper(t, "tokhelper", "#!/bin/sh\necho tok\n"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := Helper{Name: "tokhelper"}.Token(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

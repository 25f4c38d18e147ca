package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
extend = true
disable = ["<"]
wrap_selection = false

[pairs]
"|" = "|"
"⟨" = "⟩"
`

const yamlConfig = `
extend: false
pairs:
  "(": ")"
  "$": "$"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFromPath(t *testing.T) {
	cases := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "pairs.toml", want: FormatTOML},
		{path: "pairs.YAML", want: FormatYAML},
		{path: "dir/pairs.yml", want: FormatYAML},
		{path: "pairs.json", wantErr: true},
		{path: "pairs", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatFromPath(tc.path)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pairs.toml", tomlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Extend)
	assert.Equal(t, []string{"<"}, cfg.Disable)
	require.NotNil(t, cfg.WrapSelection)
	assert.False(t, *cfg.WrapSelection)

	table, err := cfg.Table()
	require.NoError(t, err)

	closing, ok := table.Close('|')
	assert.True(t, ok)
	assert.Equal(t, '|', closing)

	closing, ok = table.Close('⟨')
	assert.True(t, ok)
	assert.Equal(t, '⟩', closing)

	// Defaults are kept, except the disabled opener.
	assert.True(t, table.IsOpen('('))
	assert.False(t, table.IsOpen('<'))
	assert.False(t, table.IsClose('>'))
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pairs.yaml", yamlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Extend)
	assert.Nil(t, cfg.WrapSelection)

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.True(t, table.IsOpen('$'))
	assert.False(t, table.IsOpen('['))

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestInvalidPairs(t *testing.T) {
	cases := map[string]string{
		"multi-rune key":   "[pairs]\n\"/*\" = \"*/\"\n",
		"empty value":      "[pairs]\n\"(\" = \"\"\n",
		"multi-rune value": "[pairs]\n\"(\" = \"))\"\n",
		"bad disable":      "disable = [\"((\"]\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), FormatTOML)
			require.ErrorIs(t, err, ErrInvalidPair)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("pairs = ["), FormatTOML)
	require.Error(t, err)

	_, err = Parse([]byte("pairs: [a"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte("{}"), Format("json"))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	table, err := DefaultConfig().Table()
	require.NoError(t, err)
	assert.Equal(t, 10, table.Len())
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pairs.toml", tomlConfig)

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	reloaded := make(chan *Config, 16)
	w.OnChange(func(cfg *Config) {
		reloaded <- cfg
	})

	writeFile(t, dir, "pairs.toml", "extend = false\n[pairs]\n\"|\" = \"|\"\n")

	require.Eventually(t, func() bool {
		cfg := w.Config()
		return !cfg.Extend && len(cfg.Pairs) == 1 && cfg.Pairs["|"] == "|"
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(reloaded) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestWatcherKeepsConfigOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pairs.yaml", yamlConfig)

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, dir, "pairs.yaml", "pairs:\n  \"((\": \")\"\n")

	select {
	case err := <-w.Errors():
		require.ErrorIs(t, err, ErrInvalidPair)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a reload error")
	}

	assert.Equal(t, ")", w.Config().Pairs["("])
}

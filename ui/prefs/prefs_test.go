package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	p, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, "", p.String(KeyLastImage))
	assert.True(t, p.Bool(KeyShowBird, true))
	assert.Equal(t, 800.0, p.FloatWithFallback(KeyWindowWidth, 800))
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", prefsFile)
	p, err := LoadFrom(path)
	require.NoError(t, err)

	p.SetFloat(KeyWindowWidth, 1024)
	p.SetBool(KeyShowBird, false)
	p.SetString(KeyTool, "Measure")
	p.AddRecent("/pages/a.png")
	p.AddRecent("/pages/b.png")
	p.AddRecent("/pages/a.png")
	require.NoError(t, p.Save())

	q, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 1024.0, q.FloatWithFallback(KeyWindowWidth, 0))
	assert.False(t, q.Bool(KeyShowBird, true))
	assert.Equal(t, "Measure", q.String(KeyTool))
	assert.Equal(t, []string{"/pages/a.png", "/pages/b.png"}, q.Recent())
	assert.Equal(t, "/pages", q.String(KeyLastDir))
	assert.Equal(t, "/pages/a.png", q.String(KeyLastImage))
}

func TestRecentIsBounded(t *testing.T) {
	p, err := LoadFrom(filepath.Join(t.TempDir(), prefsFile))
	require.NoError(t, err)
	for i := 0; i < maxRecent+5; i++ {
		p.AddRecent(fmt.Sprintf("/p/%d.png", i))
	}
	r := p.Recent()
	assert.Len(t, r, maxRecent)
	assert.Equal(t, fmt.Sprintf("/p/%d.png", maxRecent+4), r[0])
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	p, err := LoadFrom(path)
	assert.Error(t, err)
	require.NotNil(t, p)
	p.SetString(KeyLastDir, "/x")
	assert.Equal(t, "/x", p.String(KeyLastDir))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkspaceSettings(t *testing.T) {
	s := ParseWorkspaceSettings("")
	assert.Equal(t, ThemeSystem, s.ThemeMode)

	s = ParseWorkspaceSettings("{not json")
	assert.Equal(t, DefaultWorkspaceSettings(), s, "broken blob falls back to defaults")

	s = ParseWorkspaceSettings(`{"themeMode":"dark","defaultIde":{"kind":"vscode","name":"VS Code","exePath":"/usr/bin/code"}}`)
	assert.Equal(t, ThemeDark, s.ThemeMode)
	require.NotNil(t, s.DefaultIde)
	assert.Equal(t, IdeVscode, s.DefaultIde.Kind)

	s = ParseWorkspaceSettings(`{"customThemeId":"x"}`)
	assert.Equal(t, ThemeSystem, s.ThemeMode, "missing theme mode defaults to system")
}

func TestProjectBlobRoundTrip(t *testing.T) {
	var p Project

	assert.Nil(t, p.Display())
	assert.Nil(t, p.IdeOverride())

	p.SetDisplay(&ProjectDisplay{ThemeMode: "dark", ThemeColor: "#112233"})
	display := p.Display()
	require.NotNil(t, display)
	assert.Equal(t, "#112233", display.ThemeColor)

	p.SetDisplay(nil)
	assert.Empty(t, p.DisplayJSON)
	assert.Nil(t, p.Display())

	p.IdeOverrideJSON = "###"
	assert.Nil(t, p.IdeOverride(), "broken blob reads as unset")
}

func TestRepositoryLastStatus(t *testing.T) {
	var r GitRepository
	assert.Nil(t, r.LastStatus())

	r.LastStatusJSON = `{"dirty":true,"ahead":2,"behind":1,"network":"online"}`
	s := r.LastStatus()
	require.NotNil(t, s)
	assert.True(t, s.Dirty)
	assert.Equal(t, 2, s.Ahead)
	assert.Equal(t, 1, s.Behind)
	assert.Equal(t, NetworkOnline, s.Network)

	r.LastStatusJSON = "###"
	assert.Nil(t, r.LastStatus())
}

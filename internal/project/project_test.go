package project

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestReadManifest(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Manifest
		wantErr error
	}{
		{
			name:    "complete",
			content: `{"name":"my-ext","version":"1.2.3","publisher":"acme"}`,
			want:    &Manifest{Name: "my-ext", Version: "1.2.3", Publisher: "acme"},
		},
		{
			name:    "no publisher",
			content: `{"name":"my-ext","version":"0.0.1"}`,
			want:    &Manifest{Name: "my-ext", Version: "0.0.1"},
		},
		{
			name:    "no name",
			content: `{"version":"1.0.0","publisher":"acme"}`,
			wantErr: ErrManifestMissingName,
		},
		{
			name:    "malformed",
			content: `{"name": `,
			wantErr: ErrManifestUnreadable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ManifestFileName, tt.content)

			got, err := ReadManifest(dir)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.ErrorIs(t, err, ErrManifestUnreadable)
	assert.EqualError(t, err, "Could not read package.json. Make sure you're in the root directory of your project.")
}

func TestManifest_RequirePublisher(t *testing.T) {
	assert.ErrorIs(t, (&Manifest{Name: "x"}).RequirePublisher(), ErrManifestMissingPublisher)
	assert.NoError(t, (&Manifest{Name: "x", Publisher: "acme"}).RequirePublisher())
}

func TestDefaultPublisher(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, DefaultPublisher(dir))

	writeFile(t, dir, ManifestFileName, `{"name":"my-ext","publisher":"acme"}`)
	assert.Equal(t, "acme", DefaultPublisher(dir))
}

func TestEnsurePublisher_AddsFieldPreservingOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFileName, `{
  "name": "my-ext",
  "version": "1.0.0",
  "scripts": {
    "build": "tsc"
  },
  "files": ["dist"]
}
`)

	changed, err := EnsurePublisher(dir, "acme")
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)
	want := `{
  "name": "my-ext",
  "version": "1.0.0",
  "scripts": {
    "build": "tsc"
  },
  "files": [
    "dist"
  ],
  "publisher": "acme"
}
`
	assert.Equal(t, want, string(data))

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme", m.Publisher)
}

func TestEnsurePublisher_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	original := `{"name":"my-ext","publisher":"original"}`
	writeFile(t, dir, ManifestFileName, original)

	changed, err := EnsurePublisher(dir, "acme")
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestEnsurePublisher_ReplacesEmptyValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFileName, `{"publisher":"","name":"my-ext"}`)

	changed, err := EnsurePublisher(dir, "acme")
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"publisher\": \"acme\""), string(data))
}

func TestEnsurePublisher_NestedValuesKeepOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFileName, `{"name":"my-ext","engines":{"vscode":"^1.80.0","node":">=18"},"contributes":{"commands":[]}}`)

	changed, err := EnsurePublisher(dir, "acme")
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)
	out := string(data)
	assert.Less(t, strings.Index(out, `"vscode"`), strings.Index(out, `"node"`))
	assert.Less(t, strings.Index(out, `"contributes"`), strings.Index(out, `"publisher": "acme"`))
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestEnsurePublisher_NoManifest(t *testing.T) {
	changed, err := EnsurePublisher(t.TempDir(), "acme")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEnsurePublisher_NotAnObject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFileName, `["name"]`)

	_, err := EnsurePublisher(dir, "acme")
	assert.Error(t, err)
}

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name      string
		lockFiles []string
		wantName  string
		wantRun   string
	}{
		{"npm", []string{"package-lock.json"}, "npm", "npx code-checkout-init"},
		{"yarn", []string{"yarn.lock"}, "yarn", "yarn run code-checkout-init"},
		{"pnpm", []string{"pnpm-lock.yaml"}, "pnpm", "pnpm dlx code-checkout-init"},
		{"npm wins over yarn", []string{"yarn.lock", "package-lock.json"}, "npm", "npx code-checkout-init"},
		{"no lock file", nil, "", "npx code-checkout-init"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.lockFiles {
				writeFile(t, dir, f, "")
			}

			pm := DetectPackageManager(dir)
			assert.Equal(t, tt.wantName, pm.Name)
			assert.Equal(t, tt.wantName != "", pm.Detected())
			assert.Equal(t, tt.wantRun, pm.RunScriptCommand())
		})
	}
}

func TestPackageManager_InstallCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "yarn.lock", "")
	assert.Equal(t, "yarn add @riff-tech/code-checkout-vscode", DetectPackageManager(dir).InstallCommand())
}

// fakeBinary puts an executable shell script named name on PATH.
func fakeBinary(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"+script), 0755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestExecRunner_RunsDetectedScript(t *testing.T) {
	fakeBinary(t, "yarn", `echo "yarn $@ in $(pwd)"`+"\n")

	dir := t.TempDir()
	writeFile(t, dir, "yarn.lock", "")

	var stdout bytes.Buffer
	runner := &ExecRunner{Stdout: &stdout, Stderr: &stdout, Logger: zerolog.Nop()}
	require.NoError(t, runner.RunInitScript(context.Background(), dir))

	assert.Contains(t, stdout.String(), "yarn run code-checkout-init")
}

func TestExecRunner_Failure(t *testing.T) {
	fakeBinary(t, "npx", "exit 3\n")

	runner := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Logger: zerolog.Nop()}
	err := runner.RunInitScript(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run initialization script")
	assert.Contains(t, err.Error(), "exit status 3")
}

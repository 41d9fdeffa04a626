package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseJavaFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "App.java", `
package com.example.app;

public class App {
    public static void main(String[] args) {}
}

interface Runner {}

enum Mode { FAST, SLOW }
`)

	meta, err := ParseJavaFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "com.example.app", meta.Package)
	assert.ElementsMatch(t, []string{
		"com.example.app.App",
		"com.example.app.Runner",
		"com.example.app.Mode",
	}, meta.FQNs)
}

func TestParseJavaFileDefaultPackage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Main.java", `public class Main {}`)

	meta, err := ParseJavaFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "", meta.Package)
	assert.Equal(t, []string{"Main"}, meta.FQNs)
}

func TestParseJavaPackageInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "package-info.java", `
/** Utilities. */
package com.example.util;
`)

	meta, err := ParseJavaFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, meta.FQNs, "com.example.util")
}

func TestParseJavaFileMissing(t *testing.T) {
	_, err := ParseJavaFile(context.Background(), "/does/not/exist/App.java")
	assert.Error(t, err)
}

func TestParseKotlinFileClasses(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Widget.kt", `
package com.example.ui

class Widget {
    fun render() {}
}

object Registry
`)

	meta, err := ParseKotlinFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "com.example.ui", meta.Package)
	assert.Contains(t, meta.FQNs, "com.example.ui.Widget")
	assert.Contains(t, meta.FQNs, "com.example.ui.Registry")
	// The package itself is recorded for package-level lookups.
	assert.Contains(t, meta.FQNs, "com.example.ui")
}

func TestParseKotlinFileTopLevelFunctions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "helpers.kt", `
package com.example.util

fun formatName(name: String): String = name.trim()
`)

	meta, err := ParseKotlinFile(context.Background(), path)
	require.NoError(t, err)
	// Top-level members produce the synthetic Kt facade type.
	assert.Contains(t, meta.FQNs, "com.example.util.HelpersKt")
}

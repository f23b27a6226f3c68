package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRulesValidateEmbedded(t *testing.T) {
	out, err := execute(t, "rules", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "technology")
	assert.Contains(t, out, "rules are valid")
}

func TestRulesValidateRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [{name: x, confidence: 2}]"), 0o600))

	_, err := execute(t, "rules", "validate", path)
	assert.Error(t, err)
}

func TestClassifyPrintsExtraction(t *testing.T) {
	out, err := execute(t, "classify", "Contratar", "limpieza")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 0.85, result["confidence"])
	fields := result["extractedFields"].(map[string]any)
	assert.Equal(t, "services", fields["category"])
	assert.NotEmpty(t, result["suggestedFields"])
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_POSTGRESQL_WRITE_DSN", "postgres://app:s3cret@db:5432/reports")

	out, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, `"storageBackend": "postgres"`)
	assert.Contains(t, out, `"extractionCacheSize": 0`)
}

func TestConfigShowRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "config", "show", "--format", "toml")
	assert.Error(t, err)
}

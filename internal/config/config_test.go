package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-screener/internal/skills"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"match_mode": "word",
		"concurrency": 8,
		"database_url": "postgres://localhost/screener",
		"port": 9090,
		"log_json": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "word", cfg.MatchMode)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "postgres://localhost/screener", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.LogJSON)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty is valid", Config{}, ""},
		{"unknown match mode", Config{MatchMode: "fuzzy"}, "match_mode"},
		{"negative concurrency", Config{Concurrency: -1}, "concurrency"},
		{"negative upload limit", Config{MaxUploadBytes: -1}, "max_upload_bytes"},
		{"port out of range", Config{Port: 70000}, "port"},
		{"missing vocabulary file", Config{VocabularyFile: "/nonexistent/vocab.json"}, "vocabulary file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{MatchMode: "word", Port: 9000}
	defaults := Config{
		MatchMode:      "substring",
		Concurrency:    4,
		DatabaseURL:    "postgres://default",
		Port:           8080,
		MaxUploadBytes: 1024,
	}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, "word", merged.MatchMode)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, 4, merged.Concurrency)
	assert.Equal(t, "postgres://default", merged.DatabaseURL)
	assert.Equal(t, int64(1024), merged.MaxUploadBytes)

	// original untouched
	assert.Equal(t, 0, cfg.Concurrency)
}

func TestConfig_Extractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"terms":[{"name":"Go","aliases":["golang"]}]}`), 0644))

	cfg := Config{VocabularyFile: path, MatchMode: "word"}
	ex, err := cfg.Extractor()
	require.NoError(t, err)
	assert.Equal(t, skills.MatchWord, ex.Mode())
	assert.Equal(t, []string{"Go"}, ex.Vocabulary().Names())

	ex, err = (&Config{}).Extractor()
	require.NoError(t, err)
	assert.Equal(t, skills.MatchSubstring, ex.Mode())
	assert.Equal(t, skills.Default().Len(), ex.Vocabulary().Len())

	_, err = (&Config{MatchMode: "nope"}).Extractor()
	assert.Error(t, err)
}

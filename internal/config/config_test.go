package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Lookup: LookupConfig{BaseURL: "https://www.iafd.com", Concurrency: 2},
		Photo:  PhotoConfig{Kind: PhotoKindBoth},
	}
}

func TestValidateCapsConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Lookup.Concurrency = 12
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Lookup.Concurrency, "concurrency is capped regardless of requested value")

	cfg.Lookup.Concurrency = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Lookup.Concurrency)
}

func TestValidateRejectsBadPhotoKind(t *testing.T) {
	cfg := validConfig()
	cfg.Photo.Kind = "thumbnail"
	assert.Error(t, cfg.Validate())

	for _, kind := range []PhotoKind{PhotoKindPoster, PhotoKindFace, PhotoKindBoth} {
		cfg.Photo.Kind = kind
		assert.NoError(t, cfg.Validate())
	}
}

func TestValidateRequiresBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Lookup.BaseURL = ""
	assert.Error(t, cfg.Validate())
}

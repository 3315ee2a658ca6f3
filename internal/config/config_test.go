package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, MediaDriverCloudinary, cfg.Media.Driver)
	assert.Equal(t, "products", cfg.Media.DefaultFolder)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxUploadSize)
	assert.Equal(t, 10, cfg.Newsletter.DefaultLimit)
	assert.Equal(t, 24*time.Hour, cfg.Worker.MediaOrphanAfter)
	assert.Empty(t, cfg.CORSAllowedHosts)
}

func TestLoadCORSAllowedHosts(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_HOSTS", " admin.gtdshop.co.id, ,https://panel.example.com ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin.gtdshop.co.id", "https://panel.example.com"}, cfg.CORSAllowedHosts)
}

func TestLoadPanelDoesNotNeedServerSettings(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PANEL_API_BASE_URL", "https://api.gtdshop.co.id")
	t.Setenv("PANEL_MEDIA_FOLDER", "banners")

	cfg, err := LoadPanel()
	require.NoError(t, err)
	assert.Equal(t, "https://api.gtdshop.co.id", cfg.APIBaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 10, cfg.ItemsPerPage)
	assert.Equal(t, "banners", cfg.MediaFolder)

	t.Setenv("PANEL_SEARCH_DEBOUNCE", "soon")
	_, err = LoadPanel()
	assert.ErrorContains(t, err, "PANEL_SEARCH_DEBOUNCE")
}

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	assert.Error(t, err)

	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownMediaDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("MEDIA_DRIVER", "ftp")

	_, err := Load()
	assert.ErrorContains(t, err, "MEDIA_DRIVER")
}

func TestCloudinaryHasCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  CloudinaryConfig
		want bool
	}{
		{"empty", CloudinaryConfig{}, false},
		{"url only", CloudinaryConfig{URL: "cloudinary://k:s@demo"}, true},
		{"full triple", CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"}, true},
		{"partial triple", CloudinaryConfig{CloudName: "demo", APIKey: "k"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.HasCredentials())
		})
	}
}

func TestParseDurationEnvRejectsNegative(t *testing.T) {
	t.Setenv("SOME_INTERVAL", "-1s")
	_, err := parseDurationEnv("SOME_INTERVAL", "1s")
	assert.Error(t, err)
}

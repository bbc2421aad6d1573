package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultAppID        = "io.github.genricoloni.Resonance"
	defaultIdentity     = "Resonance"
	defaultLogLevel     = "info"
	defaultPaletteSize  = 5
	defaultWorkers      = 4
	defaultBuffer       = 32
	defaultMPRISTimeout = 5 * time.Second
	envPrefix           = "RESONANCE"
)

// AppConfig holds application configuration
type AppConfig struct {
	logger          *zap.Logger
	appID           string
	identity        string
	logLevel        string
	artworkCacheDir string
	artworkMaxSize  int
	paletteSize     int
	workers         int
	commandBuffer   int
	mprisEnabled    bool
	mprisTimeout    time.Duration
	trayEnabled     bool
}

// NewAppConfig creates a new application configuration instance from defaults,
// $XDG_CONFIG_HOME/resonance/config.yaml and RESONANCE_* environment variables
func NewAppConfig(logger *zap.Logger) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := configHome(); dir != "" {
		v.AddConfigPath(filepath.Join(dir, "resonance"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warn("Error reading config file, using defaults", zap.Error(err))
		}
	}

	return Load(v, logger), nil
}

// Load builds an AppConfig from an already populated viper instance
func Load(v *viper.Viper, logger *zap.Logger) *AppConfig {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{
		logger:          logger,
		appID:           v.GetString("app.id"),
		identity:        v.GetString("app.identity"),
		logLevel:        v.GetString("log.level"),
		artworkCacheDir: expandPath(v.GetString("artwork.cache_dir")),
		artworkMaxSize:  v.GetInt("artwork.max_size"),
		paletteSize:     v.GetInt("artwork.palette_size"),
		workers:         v.GetInt("resolver.workers"),
		commandBuffer:   v.GetInt("commands.buffer"),
		mprisEnabled:    v.GetBool("mpris.enabled"),
		mprisTimeout:    v.GetDuration("mpris.timeout"),
		trayEnabled:     v.GetBool("tray.enabled"),
	}

	// Clamp values that would otherwise stall the pipeline
	if cfg.paletteSize <= 0 {
		cfg.paletteSize = defaultPaletteSize
	}
	if cfg.workers <= 0 {
		cfg.workers = defaultWorkers
	}
	if cfg.commandBuffer <= 0 {
		cfg.commandBuffer = defaultBuffer
	}
	if cfg.mprisTimeout <= 0 {
		cfg.mprisTimeout = defaultMPRISTimeout
	}
	if cfg.artworkMaxSize < 0 {
		cfg.artworkMaxSize = 0
	}

	logger.Info("Configuration loaded",
		zap.String("appID", cfg.appID),
		zap.String("artworkCacheDir", cfg.artworkCacheDir),
		zap.Int("workers", cfg.workers),
		zap.Bool("mpris", cfg.mprisEnabled),
		zap.Bool("tray", cfg.trayEnabled))

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.id", defaultAppID)
	v.SetDefault("app.identity", defaultIdentity)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("artwork.cache_dir", defaultCacheDir())
	v.SetDefault("artwork.max_size", 0)
	v.SetDefault("artwork.palette_size", defaultPaletteSize)
	v.SetDefault("resolver.workers", defaultWorkers)
	v.SetDefault("commands.buffer", defaultBuffer)
	v.SetDefault("mpris.enabled", true)
	v.SetDefault("mpris.timeout", defaultMPRISTimeout)
	v.SetDefault("tray.enabled", true)
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "resonance", "covers")
	}
	return filepath.Join(dir, "resonance", "covers")
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// AppID returns the reverse-DNS application identifier
func (c *AppConfig) AppID() string { return c.appID }

// Identity returns the human readable player name
func (c *AppConfig) Identity() string { return c.identity }

// LogLevel returns the zap level name
func (c *AppConfig) LogLevel() string { return c.logLevel }

// ArtworkCacheDir returns the directory for persisted cover art
func (c *AppConfig) ArtworkCacheDir() string { return c.artworkCacheDir }

// ArtworkMaxSize bounds the decoded bitmap's longest side
func (c *AppConfig) ArtworkMaxSize() int { return c.artworkMaxSize }

// PaletteSize returns the number of colours extracted per cover
func (c *AppConfig) PaletteSize() int { return c.paletteSize }

// ResolverWorkers returns the metadata resolution pool size
func (c *AppConfig) ResolverWorkers() int { return c.workers }

// CommandBuffer returns the capacity of the shared command queue
func (c *AppConfig) CommandBuffer() int { return c.commandBuffer }

// MPRISEnabled reports whether the MPRIS sink is registered
func (c *AppConfig) MPRISEnabled() bool { return c.mprisEnabled }

// MPRISTimeout bounds the asynchronous MPRIS registration
func (c *AppConfig) MPRISTimeout() time.Duration { return c.mprisTimeout }

// TrayEnabled reports whether the tray sink is registered
func (c *AppConfig) TrayEnabled() bool { return c.trayEnabled }

// Package config layers mcpm settings from defaults, an optional config
// file, MCPM_* environment variables and command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrnavastar/mcpm/api"
	"github.com/mrnavastar/mcpm/util/fileutils"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "mcpm"
	keyringUser    = "default_dir"

	KeyApiUrl    = "api_url"
	KeyUserAgent = "user_agent"
	KeyModsDir   = "mods_dir"
	KeyDir       = "dir"
)

type Config struct {
	ApiUrl    string
	UserAgent string
	ModsDir   string
	// Dir is the environment directory holding mcpm.lock.
	Dir string
}

// FilePath is the optional config file, <user config dir>/mcpm/config.yaml.
func FilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "mcpm", "config.yaml")
	}
	return filepath.Join(dir, "mcpm", "config.yaml")
}

// Load resolves the configuration. The environment directory comes from
// flagDir, then MCPM_DIR, then the working directory when it holds
// mcpm.lock, then the directory remembered by `mcpm init`, and finally the
// working directory.
func Load(file string, flagDir string) (Config, error) {
	v := viper.New()
	v.SetDefault(KeyApiUrl, api.MODRINTH_API_BASE)
	v.SetDefault(KeyUserAgent, api.DefaultUserAgent)
	v.SetDefault(KeyModsDir, "mods")
	v.SetEnvPrefix("MCPM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		if _, err := os.Stat(file); err == nil {
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config %s: %w", file, err)
			}
		}
	}

	cfg := Config{
		ApiUrl:    strings.TrimSuffix(v.GetString(KeyApiUrl), "/"),
		UserAgent: v.GetString(KeyUserAgent),
		ModsDir:   v.GetString(KeyModsDir),
		Dir:       v.GetString(KeyDir),
	}

	switch {
	case flagDir != "":
		cfg.Dir = flagDir
	case cfg.Dir != "":
	default:
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolving working directory: %w", err)
		}
		cfg.Dir = wd
		if _, err := os.Stat(filepath.Join(wd, fileutils.ManifestName)); err != nil {
			if remembered := RememberedDir(); remembered != "" {
				cfg.Dir = remembered
			}
		}
	}

	abs, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return Config{}, fmt.Errorf("resolving %s: %w", cfg.Dir, err)
	}
	cfg.Dir = abs
	return cfg, nil
}

// RememberedDir returns the environment directory stored by `mcpm init`, or
// "" when none was stored.
func RememberedDir() string {
	dir, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		// keyring.ErrNotFound, or no secret service on this machine
		return ""
	}
	return dir
}

// Remember stores dir as the default environment directory.
func Remember(dir string) error {
	if err := keyring.Set(keyringService, keyringUser, dir); err != nil {
		return fmt.Errorf("remembering %s: %w", dir, err)
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mrnavastar/mcpm/util"
	"github.com/mrnavastar/mcpm/util/fileutils"
	"golang.org/x/mod/semver"
)

// GameMetadata answers questions about game and loader releases.
type GameMetadata interface {
	LatestRelease(ctx context.Context) (string, error)
	ReleaseExists(ctx context.Context, version string) (bool, error)
	LoaderSupports(ctx context.Context, loader string, gameVersion string) (bool, error)
}

type InitOptions struct {
	Loader      string
	GameVersion string
	// Offline skips checking the game version against Mojang and the loader.
	Offline bool
}

// ValidGameVersion accepts release style versions such as 1.20 or 1.20.1.
func ValidGameVersion(version string) bool {
	if version == "" || strings.HasPrefix(version, "v") {
		return false
	}
	canonical := "v" + version
	return semver.IsValid(canonical) && semver.Prerelease(canonical) == "" && semver.Build(canonical) == ""
}

// Init creates the manifest for a new environment.
func Init(ctx context.Context, store *fileutils.ManifestStore, meta GameMetadata, opts InitOptions) (*util.Manifest, error) {
	loader := strings.ToLower(strings.TrimSpace(opts.Loader))
	if !util.Contains(util.Loaders, loader) {
		return nil, fmt.Errorf("unknown loader %q, expected one of %s", opts.Loader, strings.Join(util.Loaders, ", "))
	}

	exists, err := store.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrManifestExists
	}

	gameVersion := strings.TrimSpace(opts.GameVersion)
	if gameVersion == "" {
		if opts.Offline {
			return nil, fmt.Errorf("a game version is required when offline")
		}
		gameVersion, err = meta.LatestRelease(ctx)
		if err != nil {
			return nil, err
		}
	}
	if !ValidGameVersion(gameVersion) {
		return nil, fmt.Errorf("invalid game version %q", gameVersion)
	}

	if !opts.Offline {
		known, err := meta.ReleaseExists(ctx, gameVersion)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, fmt.Errorf("%s is not a released game version", gameVersion)
		}
		supported, err := meta.LoaderSupports(ctx, loader, gameVersion)
		if err != nil {
			return nil, err
		}
		if !supported {
			return nil, fmt.Errorf("%s does not support game version %s", loader, gameVersion)
		}
	}

	return store.Create(loader, gameVersion)
}

// ListedMod is an installed mod with details read from its jar.
type ListedMod struct {
	util.InstalledMod
	Version string
	Missing bool
}

// List returns the installed mods of the environment in manifest order.
func List(store *fileutils.ManifestStore) (*util.Manifest, []ListedMod, error) {
	manifest, err := store.Load()
	if err != nil {
		return nil, nil, err
	}

	mods := make([]ListedMod, 0, len(manifest.Mods))
	for _, mod := range manifest.Mods {
		listed := ListedMod{InstalledMod: mod}
		path := store.ModPath(mod.File)
		if _, err := os.Stat(path); err != nil {
			listed.Missing = true
		} else if modJson, err := fileutils.GetModJsonFromJar(path); err == nil {
			listed.Version = modJson.Version
		}
		mods = append(mods, listed)
	}
	return manifest, mods, nil
}

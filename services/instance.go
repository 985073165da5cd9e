package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mrnavastar/mcpm/util"
	"github.com/mrnavastar/mcpm/util/fileutils"
)

type Registry interface {
	FetchMod(ctx context.Context, slug string) (util.Mod, error)
	FetchVersions(ctx context.Context, ids []string) ([]util.ModVersion, error)
}

type Downloader interface {
	Download(ctx context.Context, url string, dest string) error
}

type Outcome int

const (
	Installed Outcome = iota + 1
	AlreadyInstalled
	NoMatch
	Removed
	NotInstalled
	Updated
	UpToDate
)

func (o Outcome) String() string {
	switch o {
	case Installed:
		return "installed"
	case AlreadyInstalled:
		return "already installed"
	case NoMatch:
		return "no matching version"
	case Removed:
		return "removed"
	case NotInstalled:
		return "not installed"
	case Updated:
		return "updated"
	case UpToDate:
		return "up to date"
	default:
		return "unknown"
	}
}

// Result describes what a workflow did for one mod. Soft outcomes such as
// AlreadyInstalled are results, not errors.
type Result struct {
	Outcome Outcome
	Slug    string
	Name    string
	File    string
}

// Installer runs the install, uninstall and update workflows against one
// environment.
type Installer struct {
	Registry   Registry
	Downloader Downloader
	Store      *fileutils.ManifestStore
	Logger     *log.Logger
}

func NewInstaller(registry Registry, downloader Downloader, store *fileutils.ManifestStore, logger *log.Logger) *Installer {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &Installer{
		Registry:   registry,
		Downloader: downloader,
		Store:      store,
		Logger:     logger,
	}
}

// withManifest holds the manifest lock while fn runs against the loaded manifest.
func (in *Installer) withManifest(fn func(*util.Manifest) error) error {
	exists, err := in.Store.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return util.ErrNoManifest
	}

	lock, err := in.Store.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	manifest, err := in.Store.Load()
	if err != nil {
		return err
	}
	return fn(manifest)
}

func (in *Installer) Install(ctx context.Context, slug string) (Result, error) {
	result := Result{Slug: slug}
	err := in.withManifest(func(manifest *util.Manifest) error {
		mod, err := in.Registry.FetchMod(ctx, slug)
		if err != nil {
			return err
		}
		result.Name = mod.Title
		if mod.Slug != "" {
			result.Slug = mod.Slug
		}

		if manifest.HasMod(slug) || manifest.HasMod(mod.Slug) {
			in.Logger.Debug("skipping installed mod", "slug", result.Slug)
			result.Outcome = AlreadyInstalled
			return nil
		}

		versions, err := in.Registry.FetchVersions(ctx, mod.Versions)
		if err != nil {
			return err
		}
		version, file, ok, err := Resolve(versions, manifest.Environment())
		if err != nil {
			return err
		}
		if !ok {
			in.Logger.Debug("no compatible version", "slug", result.Slug, "loader", manifest.Loader, "game_version", manifest.GameVersion, "candidates", len(versions))
			result.Outcome = NoMatch
			return nil
		}

		in.Logger.Debug("resolved version", "slug", result.Slug, "version", version.Id, "file", file.Filename)
		if err := in.Downloader.Download(ctx, file.Url, in.Store.ModPath(file.Filename)); err != nil {
			return err
		}

		manifest.AddInstalledMod(util.InstalledMod{
			Name:      mod.Title,
			Slug:      result.Slug,
			File:      file.Filename,
			VersionId: version.Id,
		})
		if err := in.Store.Save(manifest); err != nil {
			return err
		}
		result.File = file.Filename
		result.Outcome = Installed
		return nil
	})
	return result, err
}

func (in *Installer) Uninstall(ctx context.Context, slug string) (Result, error) {
	result := Result{Slug: slug}
	err := in.withManifest(func(manifest *util.Manifest) error {
		mod, ok := manifest.FindInstalledMod(slug)
		if !ok {
			result.Outcome = NotInstalled
			return nil
		}
		result.Name = mod.Name
		result.File = mod.File

		if err := in.removeFile(mod.File); err != nil {
			return err
		}

		manifest.RemoveInstalledMod(slug)
		if err := in.Store.Save(manifest); err != nil {
			return err
		}
		result.Outcome = Removed
		return nil
	})
	return result, err
}

// removeFile deletes an installed artifact. A missing file only warns; any
// other failure stops the workflow so the manifest keeps matching the disk.
func (in *Installer) removeFile(file string) error {
	path := in.Store.ModPath(file)
	err := os.Remove(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		in.Logger.Warn("mod file already gone", "path", path)
		return nil
	case errors.Is(err, fs.ErrPermission):
		return util.FileSystemError("remove "+path, fmt.Errorf("permission denied, manifest left unchanged: %w", err))
	default:
		return util.FileSystemError("remove "+path, err)
	}
}

// Update moves installed mods to their newest compatible version. With no
// slugs every installed mod is considered. The manifest is saved after each
// mod so a later failure keeps earlier updates.
func (in *Installer) Update(ctx context.Context, slugs ...string) ([]Result, error) {
	var results []Result
	err := in.withManifest(func(manifest *util.Manifest) error {
		targets := slugs
		if len(targets) == 0 {
			for _, mod := range manifest.Mods {
				targets = append(targets, mod.Slug)
			}
		}

		for _, slug := range targets {
			result, err := in.updateMod(ctx, manifest, slug)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	return results, err
}

func (in *Installer) updateMod(ctx context.Context, manifest *util.Manifest, slug string) (Result, error) {
	installed, ok := manifest.FindInstalledMod(slug)
	if !ok {
		return Result{Outcome: NotInstalled, Slug: slug}, nil
	}
	result := Result{Slug: slug, Name: installed.Name, File: installed.File}

	mod, err := in.Registry.FetchMod(ctx, slug)
	if err != nil {
		return result, err
	}
	versions, err := in.Registry.FetchVersions(ctx, mod.Versions)
	if err != nil {
		return result, err
	}
	version, file, ok, err := Resolve(versions, manifest.Environment())
	if err != nil {
		return result, err
	}
	if !ok {
		result.Outcome = NoMatch
		return result, nil
	}
	if version.Id == installed.VersionId || file.Filename == installed.File {
		result.Outcome = UpToDate
		return result, nil
	}

	in.Logger.Debug("updating mod", "slug", slug, "from", installed.File, "to", file.Filename)
	if err := in.Downloader.Download(ctx, file.Url, in.Store.ModPath(file.Filename)); err != nil {
		return result, err
	}
	if err := in.removeFile(installed.File); err != nil {
		return result, err
	}

	manifest.ReplaceInstalledMod(slug, util.InstalledMod{
		Name:      mod.Title,
		Slug:      slug,
		File:      file.Filename,
		VersionId: version.Id,
	})
	if err := in.Store.Save(manifest); err != nil {
		return result, err
	}
	result.File = file.Filename
	result.Outcome = Updated
	return result, nil
}

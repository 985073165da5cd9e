package fileutils

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/mrnavastar/mcpm/util"
)

const (
	ManifestName = "mcpm.lock"
	ModsDirName  = "mods"
)

// LoadManifest reads the manifest at path.
func LoadManifest(path string) (*util.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.FileSystemError("read "+path, err)
	}

	var manifest util.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, util.DecodeError("parse "+path, err)
	}
	if manifest.Mods == nil {
		manifest.Mods = []util.InstalledMod{}
	}
	return &manifest, nil
}

// SaveManifest replaces the file at path with manifest. The new content is
// written to a temporary file in the same directory and renamed into place.
func SaveManifest(manifest *util.Manifest, path string) error {
	out := *manifest
	if out.Mods == nil {
		out.Mods = []util.InstalledMod{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return util.DecodeError("encode manifest", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return util.FileSystemError("save "+path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return util.FileSystemError("save "+path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return util.FileSystemError("save "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return util.FileSystemError("save "+path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return util.FileSystemError("save "+path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return util.FileSystemError("save "+path, err)
	}
	return nil
}

// ManifestStore is the manifest of one environment directory together with
// its mods folder.
type ManifestStore struct {
	dir     string
	modsDir string
}

// NewManifestStore returns the store rooted at dir. An empty modsDir selects
// <dir>/mods; relative modsDir values are resolved against dir.
func NewManifestStore(dir string, modsDir string) *ManifestStore {
	if modsDir == "" {
		modsDir = ModsDirName
	}
	if !filepath.IsAbs(modsDir) {
		modsDir = filepath.Join(dir, modsDir)
	}
	return &ManifestStore{dir: dir, modsDir: modsDir}
}

func (s *ManifestStore) Dir() string {
	return s.dir
}

func (s *ManifestStore) Path() string {
	return filepath.Join(s.dir, ManifestName)
}

func (s *ManifestStore) ModsDir() string {
	return s.modsDir
}

// ModPath is where the artifact recorded as file lives.
func (s *ManifestStore) ModPath(file string) string {
	return filepath.Join(s.modsDir, file)
}

func (s *ManifestStore) Exists() (bool, error) {
	_, err := os.Stat(s.Path())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, util.FileSystemError("stat "+s.Path(), err)
}

// Load reads the manifest, returning util.ErrNoManifest when there is none.
func (s *ManifestStore) Load() (*util.Manifest, error) {
	manifest, err := LoadManifest(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, util.ErrNoManifest
	}
	return manifest, err
}

func (s *ManifestStore) Save(manifest *util.Manifest) error {
	return SaveManifest(manifest, s.Path())
}

// Create writes a fresh manifest and the mods folder.
func (s *ManifestStore) Create(loader string, gameVersion string) (*util.Manifest, error) {
	exists, err := s.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrManifestExists
	}
	if err := os.MkdirAll(s.modsDir, 0755); err != nil {
		return nil, util.FileSystemError("create "+s.modsDir, err)
	}

	manifest := &util.Manifest{
		Loader:      loader,
		GameVersion: gameVersion,
		Mods:        []util.InstalledMod{},
	}
	if err := s.Save(manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Lock takes the advisory lock guarding load-modify-save of the manifest.
// The environment directory must exist.
func (s *ManifestStore) Lock() (*Lock, error) {
	return acquireLock(s.dir)
}

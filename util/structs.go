package util

import (
	"slices"

	"github.com/go-openapi/strfmt"
)

// Loaders a manifest can be initialized with.
var Loaders = []string{"fabric", "quilt", "forge", "neoforge"}

type Mod struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ProjectType string   `json:"project_type"`
	Versions    []string `json:"versions"`
}

type ModFile struct {
	Url      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Primary  bool   `json:"primary"`
}

type Dependency struct {
	VersionId      string `json:"version_id"`
	ProjectId      string `json:"project_id"`
	FileName       string `json:"file_name"`
	DependencyType string `json:"dependency_type"`
}

type ModVersion struct {
	Id            string          `json:"id"`
	Name          string          `json:"name"`
	VersionNumber string          `json:"version_number"`
	GameVersions  []string        `json:"game_versions"`
	Loaders       []string        `json:"loaders"`
	Files         []ModFile       `json:"files"`
	DatePublished strfmt.DateTime `json:"date_published"`
	Dependencies  []Dependency    `json:"dependencies"`
}

// Matches reports whether the version can run on env.
func (v ModVersion) Matches(env Environment) bool {
	return Contains(v.Loaders, env.Loader) && Contains(v.GameVersions, env.GameVersion)
}

// PrimaryFile returns the file flagged as primary, if any.
func (v ModVersion) PrimaryFile() (ModFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	return ModFile{}, false
}

type SearchHit struct {
	Slug          string
	Title         string
	Description   string
	Author        string
	LatestVersion string
}

type Environment struct {
	Loader      string
	GameVersion string
}

type InstalledMod struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	File      string `json:"file"`
	VersionId string `json:"version_id,omitempty"`
}

// Manifest is the persisted state of one game environment.
type Manifest struct {
	Loader      string         `json:"loader"`
	GameVersion string         `json:"minecraft_version"`
	Mods        []InstalledMod `json:"mods"`
}

func (m *Manifest) Environment() Environment {
	return Environment{Loader: m.Loader, GameVersion: m.GameVersion}
}

// AddInstalledMod appends mod. Callers check for duplicates first.
func (m *Manifest) AddInstalledMod(mod InstalledMod) {
	m.Mods = append(m.Mods, mod)
}

// RemoveInstalledMod drops every entry recorded under slug.
func (m *Manifest) RemoveInstalledMod(slug string) {
	m.Mods = slices.DeleteFunc(m.Mods, func(mod InstalledMod) bool {
		return mod.Slug == slug
	})
}

// ReplaceInstalledMod overwrites the entry recorded under slug in place,
// keeping its position in the list. It reports false when slug is absent.
func (m *Manifest) ReplaceInstalledMod(slug string, mod InstalledMod) bool {
	i := slices.IndexFunc(m.Mods, func(mod InstalledMod) bool {
		return mod.Slug == slug
	})
	if i < 0 {
		return false
	}
	m.Mods[i] = mod
	return true
}

func (m *Manifest) FindInstalledMod(slug string) (InstalledMod, bool) {
	i := slices.IndexFunc(m.Mods, func(mod InstalledMod) bool {
		return mod.Slug == slug
	})
	if i < 0 {
		return InstalledMod{}, false
	}
	return m.Mods[i], true
}

func (m *Manifest) HasMod(slug string) bool {
	_, ok := m.FindInstalledMod(slug)
	return ok
}

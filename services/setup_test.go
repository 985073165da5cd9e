package services

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/mrnavastar/mcpm/util"
	"github.com/mrnavastar/mcpm/util/fileutils"
)

type fakeMetadata struct {
	latest    string
	releases  []string
	supported map[string][]string
	calls     int
}

func (m *fakeMetadata) LatestRelease(ctx context.Context) (string, error) {
	m.calls++
	return m.latest, nil
}

func (m *fakeMetadata) ReleaseExists(ctx context.Context, version string) (bool, error) {
	m.calls++
	return util.Contains(m.releases, version), nil
}

func (m *fakeMetadata) LoaderSupports(ctx context.Context, loader string, gameVersion string) (bool, error) {
	m.calls++
	versions, ok := m.supported[loader]
	if !ok {
		return true, nil
	}
	return util.Contains(versions, gameVersion), nil
}

func newMetadata() *fakeMetadata {
	return &fakeMetadata{
		latest:    "1.20.1",
		releases:  []string{"1.19.4", "1.20", "1.20.1"},
		supported: map[string][]string{"fabric": {"1.19.4", "1.20.1"}},
	}
}

func TestValidGameVersion(t *testing.T) {
	tests := map[string]bool{
		"1.20.1":   true,
		"1.20":     true,
		"1.7.10":   true,
		"":         false,
		"v1.20":    false,
		"23w31a":   false,
		"1.20-pre": false,
		"latest":   false,
	}
	for in, want := range tests {
		if got := ValidGameVersion(in); got != want {
			t.Errorf("ValidGameVersion(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit(t *testing.T) {
	store := fileutils.NewManifestStore(t.TempDir(), "")
	manifest, err := Init(context.Background(), store, newMetadata(), InitOptions{Loader: "Fabric"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if manifest.Loader != "fabric" || manifest.GameVersion != "1.20.1" || len(manifest.Mods) != 0 {
		t.Errorf("Init() = %+v", manifest)
	}
	if _, err := store.Load(); err != nil {
		t.Errorf("manifest not persisted: %v", err)
	}

	_, err = Init(context.Background(), store, newMetadata(), InitOptions{Loader: "fabric", GameVersion: "1.20.1"})
	if !errors.Is(err, util.ErrManifestExists) {
		t.Errorf("second Init() error = %v, want ErrManifestExists", err)
	}
}

func TestInitRejects(t *testing.T) {
	tests := []struct {
		name string
		opts InitOptions
	}{
		{"unknown loader", InitOptions{Loader: "rift", GameVersion: "1.20.1"}},
		{"bad version", InitOptions{Loader: "fabric", GameVersion: "one.twenty"}},
		{"unreleased version", InitOptions{Loader: "forge", GameVersion: "1.99"}},
		{"unsupported by loader", InitOptions{Loader: "fabric", GameVersion: "1.20"}},
		{"offline without version", InitOptions{Loader: "fabric", Offline: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := fileutils.NewManifestStore(t.TempDir(), "")
			if _, err := Init(context.Background(), store, newMetadata(), tt.opts); err == nil {
				t.Fatal("Init() expected error")
			}
			if exists, _ := store.Exists(); exists {
				t.Error("manifest written for rejected init")
			}
		})
	}
}

func TestInitOffline(t *testing.T) {
	meta := newMetadata()
	store := fileutils.NewManifestStore(t.TempDir(), "")
	if _, err := Init(context.Background(), store, meta, InitOptions{Loader: "quilt", GameVersion: "1.18.2", Offline: true}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if meta.calls != 0 {
		t.Errorf("offline init made %d metadata calls", meta.calls)
	}
}

func TestList(t *testing.T) {
	store := fileutils.NewManifestStore(t.TempDir(), "")
	manifest, err := store.Create("fabric", "1.20.1")
	if err != nil {
		t.Fatal(err)
	}
	manifest.AddInstalledMod(util.InstalledMod{Name: "Foo", Slug: "foo", File: "foo.jar"})
	manifest.AddInstalledMod(util.InstalledMod{Name: "Gone", Slug: "gone", File: "gone.jar"})
	if err := store.Save(manifest); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(store.ModPath("foo.jar"))
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	entry, _ := w.Create("fabric.mod.json")
	entry.Write([]byte(`{"id":"foo","version":"1.2.3"}`))
	w.Close()
	f.Close()

	_, mods, err := List(store)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("List() returned %d mods", len(mods))
	}
	if mods[0].Version != "1.2.3" || mods[0].Missing {
		t.Errorf("foo = %+v", mods[0])
	}
	if !mods[1].Missing {
		t.Errorf("gone = %+v, want missing", mods[1])
	}
}

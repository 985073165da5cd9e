package fileutils

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"io"
)

type ModJson struct {
	Id          string `json:"id"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type quiltModJson struct {
	QuiltLoader struct {
		Id       string `json:"id"`
		Version  string `json:"version"`
		Metadata struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"metadata"`
	} `json:"quilt_loader"`
}

var ErrNoModJson = errors.New("jar has no fabric.mod.json or quilt.mod.json")

// GetModJsonFromJar reads the loader metadata embedded in a mod jar.
func GetModJsonFromJar(path string) (ModJson, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return ModJson{}, err
	}
	defer reader.Close()

	for _, file := range reader.File {
		switch file.Name {
		case "fabric.mod.json":
			var modJson ModJson
			if err := readZipJson(file, &modJson); err != nil {
				return ModJson{}, err
			}
			return modJson, nil
		case "quilt.mod.json":
			var quilt quiltModJson
			if err := readZipJson(file, &quilt); err != nil {
				return ModJson{}, err
			}
			return ModJson{
				Id:          quilt.QuiltLoader.Id,
				Version:     quilt.QuiltLoader.Version,
				Name:        quilt.QuiltLoader.Metadata.Name,
				Description: quilt.QuiltLoader.Metadata.Description,
			}, nil
		}
	}
	return ModJson{}, ErrNoModJson
}

func readZipJson(file *zip.File, v any) error {
	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	// some mods ship raw newlines inside string values
	return json.Unmarshal(stripNewlines(content), v)
}

func stripNewlines(b []byte) []byte {
	out := b[:0:0]
	for _, c := range b {
		if c != '\n' && c != '\r' {
			out = append(out, c)
		}
	}
	return out
}

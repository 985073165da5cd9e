package services

import (
	"fmt"
	"path/filepath"

	"github.com/mrnavastar/mcpm/util"
)

// Resolve picks the newest version compatible with env and its primary file.
// Registry order is oldest first, so the last match wins. ok is false when
// nothing matches.
func Resolve(versions []util.ModVersion, env util.Environment) (version util.ModVersion, file util.ModFile, ok bool, err error) {
	var matched []util.ModVersion
	for _, v := range versions {
		if v.Matches(env) {
			matched = append(matched, v)
		}
	}
	if len(matched) == 0 {
		return util.ModVersion{}, util.ModFile{}, false, nil
	}

	version = matched[len(matched)-1]
	file, found := version.PrimaryFile()
	if !found {
		return version, util.ModFile{}, false, util.ResolveError("resolve "+version.Id, util.ErrNoPrimaryFile)
	}
	if name := filepath.Base(file.Filename); name != file.Filename || name == "." || name == ".." || name == string(filepath.Separator) {
		return version, util.ModFile{}, false, util.ResolveError("resolve "+version.Id, fmt.Errorf("invalid file name %q", file.Filename))
	}
	return version, file, true, nil
}

package api

import (
	"context"
	"encoding/json"

	"github.com/mrnavastar/mcpm/util"
)

type GameVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// LoaderSupports reports whether loader publishes support for gameVersion.
// Loaders without a public metadata service are assumed to support it.
func (c *Client) LoaderSupports(ctx context.Context, loader string, gameVersion string) (bool, error) {
	var url string
	switch loader {
	case "fabric":
		url = c.FabricBase + "/versions/game"
	case "quilt":
		url = c.QuiltBase + "/versions/game"
	default:
		return true, nil
	}

	versions, err := c.fetchGameVersions(ctx, loader, url)
	if err != nil {
		return false, err
	}
	for _, v := range versions {
		if v.Version == gameVersion {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) fetchGameVersions(ctx context.Context, loader string, url string) ([]GameVersion, error) {
	op := "fetch " + loader + " game versions"
	resp, err := c.rest.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, util.NetworkError(op, err)
	}
	if resp.IsError() {
		return nil, statusError(op, resp)
	}

	var versions []GameVersion
	if err := json.Unmarshal(resp.Body(), &versions); err != nil {
		return nil, util.DecodeError(op, err)
	}
	return versions, nil
}

package api

import (
	"context"
	"encoding/json"

	"github.com/mrnavastar/mcpm/util"
)

type versionManifest struct {
	Latest struct {
		Release string `json:"release"`
	} `json:"latest"`
	Versions []struct {
		Id   string `json:"id"`
		Type string `json:"type"`
	} `json:"versions"`
}

func (c *Client) fetchVersionManifest(ctx context.Context) (versionManifest, error) {
	var manifest versionManifest
	resp, err := c.rest.R().SetContext(ctx).Get(c.MojangURL)
	if err != nil {
		return manifest, util.NetworkError("fetch game versions", err)
	}
	if resp.IsError() {
		return manifest, statusError("fetch game versions", resp)
	}
	if err := json.Unmarshal(resp.Body(), &manifest); err != nil {
		return manifest, util.DecodeError("fetch game versions", err)
	}
	return manifest, nil
}

// LatestRelease returns the newest stable game version.
func (c *Client) LatestRelease(ctx context.Context) (string, error) {
	manifest, err := c.fetchVersionManifest(ctx)
	if err != nil {
		return "", err
	}
	return manifest.Latest.Release, nil
}

func (c *Client) ReleaseExists(ctx context.Context, version string) (bool, error) {
	manifest, err := c.fetchVersionManifest(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range manifest.Versions {
		if v.Id == version {
			return true, nil
		}
	}
	return false, nil
}

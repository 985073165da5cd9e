package api

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/mrnavastar/mcpm/util"
	"github.com/tidwall/gjson"
)

const modFacets = `[["project_type:mod"]]`

// FetchMod looks up a project by slug or id.
func (c *Client) FetchMod(ctx context.Context, slug string) (util.Mod, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		Get(c.ModrinthBase + "/project/{slug}")
	if err != nil {
		return util.Mod{}, util.NetworkError("fetch mod "+slug, err)
	}
	if resp.IsError() {
		return util.Mod{}, statusError("fetch mod "+slug, resp)
	}

	var mod util.Mod
	if err := json.Unmarshal(resp.Body(), &mod); err != nil {
		return util.Mod{}, util.DecodeError("fetch mod "+slug, err)
	}
	return mod, nil
}

// FetchVersions returns the version records for ids in registry order.
func (c *Client) FetchVersions(ctx context.Context, ids []string) ([]util.ModVersion, error) {
	if len(ids) == 0 {
		return []util.ModVersion{}, nil
	}

	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, util.DecodeError("fetch versions", err)
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("ids", string(encoded)).
		Get(c.ModrinthBase + "/versions")
	if err != nil {
		return nil, util.NetworkError("fetch versions", err)
	}
	if resp.IsError() {
		return nil, statusError("fetch versions", resp)
	}

	var versions []util.ModVersion
	if err := json.Unmarshal(resp.Body(), &versions); err != nil {
		return nil, util.DecodeError("fetch versions", err)
	}
	return versions, nil
}

// Search queries the registry for mods matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]util.SearchHit, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":  query,
			"limit":  strconv.Itoa(limit),
			"facets": modFacets,
		}).
		Get(c.ModrinthBase + "/search")
	if err != nil {
		return nil, util.NetworkError("search", err)
	}
	if resp.IsError() {
		return nil, statusError("search", resp)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, util.DecodeError("search", errors.New("invalid json in search response"))
	}

	var hits []util.SearchHit
	for _, hit := range gjson.GetBytes(body, "hits").Array() {
		hits = append(hits, util.SearchHit{
			Slug:          hit.Get("slug").String(),
			Title:         hit.Get("title").String(),
			Description:   hit.Get("description").String(),
			Author:        hit.Get("author").String(),
			LatestVersion: hit.Get("latest_version").String(),
		})
	}
	return hits, nil
}

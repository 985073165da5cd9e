package api

import (
	"fmt"
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/go-resty/resty/v2"
	"github.com/mrnavastar/mcpm/util"
)

const (
	Version          = "0.2.0"
	DefaultUserAgent = "mrnavastar/mcpm/" + Version
)

var (
	MODRINTH_API_BASE = "https://api.modrinth.com/v2"
	MOJANG_MANIFEST   = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"
	FABRIC_META_BASE  = "https://meta.fabricmc.net/v2"
	QUILT_META_BASE   = "https://meta.quiltmc.org/v3"
)

// Client talks to Modrinth and the loader metadata services. Requests are
// never retried.
type Client struct {
	rest *resty.Client

	ModrinthBase string
	MojangURL    string
	FabricBase   string
	QuiltBase    string
}

func NewClient(modrinthBase string, userAgent string) *Client {
	if modrinthBase == "" {
		modrinthBase = MODRINTH_API_BASE
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := resty.New().SetHeader("User-Agent", userAgent)

	return &Client{
		rest:         client,
		ModrinthBase: modrinthBase,
		MojangURL:    MOJANG_MANIFEST,
		FabricBase:   FABRIC_META_BASE,
		QuiltBase:    QUILT_META_BASE,
	}
}

// Resty exposes the underlying HTTP client so downloads share the user agent.
func (c *Client) Resty() *resty.Client {
	return c.rest
}

// statusError turns a non-2xx response into a typed error. Modrinth reports
// failures as {"error": "...", "description": "..."}.
func statusError(op string, resp *resty.Response) error {
	msg := resp.Status()
	if desc, err := jsonparser.GetString(resp.Body(), "description"); err == nil && desc != "" {
		msg = msg + ": " + desc
	}
	err := fmt.Errorf("unexpected response %s", msg)
	if resp.StatusCode() == http.StatusNotFound {
		return util.NotFoundError(op, err)
	}
	return util.NetworkError(op, err)
}

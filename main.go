package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/text"
	"github.com/mattn/go-runewidth"
	"github.com/mrnavastar/mcpm/api"
	"github.com/mrnavastar/mcpm/config"
	"github.com/mrnavastar/mcpm/services"
	"github.com/mrnavastar/mcpm/util"
	"github.com/mrnavastar/mcpm/util/fileutils"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

type env struct {
	cfg       config.Config
	client    *api.Client
	store     *fileutils.ManifestStore
	installer *services.Installer
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(config.FilePath(), c.String("dir"))
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.ApiUrl, cfg.UserAgent)
	store := fileutils.NewManifestStore(cfg.Dir, cfg.ModsDir)
	downloader := fileutils.NewDownloader(client.Resty(), fileutils.PtermProgress)
	logger := util.NewLogger(c.Bool("verbose"))
	logger.Debug("environment", "dir", cfg.Dir, "api", cfg.ApiUrl)

	return &env{
		cfg:       cfg,
		client:    client,
		store:     store,
		installer: services.NewInstaller(client, downloader, store, logger),
	}, nil
}

func main() {
	app := &cli.App{
		Name:    "mcpm",
		Usage:   "Package manager for minecraft mods",
		Version: api.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "environment directory containing mcpm.lock",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print debug logs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create mcpm.lock for this environment",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "loader", Aliases: []string{"l"}, Value: "fabric", Usage: "fabric, quilt, forge or neoforge"},
					&cli.StringFlag{Name: "game-version", Aliases: []string{"g"}, Usage: "minecraft version, defaults to the latest release"},
					&cli.BoolFlag{Name: "offline", Usage: "skip checking the version against mojang and the loader"},
				},
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}

					manifest, err := services.Init(c.Context, e.store, e.client, services.InitOptions{
						Loader:      c.String("loader"),
						GameVersion: c.String("game-version"),
						Offline:     c.Bool("offline"),
					})
					if err != nil {
						return err
					}
					if err := config.Remember(e.cfg.Dir); err != nil {
						pterm.Warning.Println(err)
					}
					pterm.Success.Printfln("Initialized %s %s in %s", manifest.Loader, manifest.GameVersion, e.cfg.Dir)
					return nil
				},
			},
			{
				Name:      "search",
				Usage:     "Search the registry for mods",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("search needs a mod name", 1)
					}
					e, err := setup(c)
					if err != nil {
						return err
					}

					hits, err := e.client.Search(c.Context, c.Args().First(), c.Int("limit"))
					if err != nil {
						return err
					}
					if len(hits) == 0 {
						pterm.Info.Println("No mods found")
						return nil
					}
					printSearch(hits)
					return nil
				},
			},
			{
				Name:      "install",
				Usage:     "Install mods",
				ArgsUsage: "<slug>...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("install needs at least one slug", 1)
					}
					e, err := setup(c)
					if err != nil {
						return err
					}

					for _, slug := range c.Args().Slice() {
						result, err := e.installer.Install(c.Context, slug)
						if err != nil {
							return err
						}
						switch result.Outcome {
						case services.Installed:
							pterm.Success.Printfln("%s has been successfully installed!", result.File)
						case services.AlreadyInstalled:
							pterm.Info.Printfln("The mod %s is already installed.", result.Name)
						case services.NoMatch:
							pterm.Warning.Printfln("No versions of %s matched the specified constraints", slug)
						}
					}
					return nil
				},
			},
			{
				Name:      "remove",
				Aliases:   []string{"uninstall"},
				Usage:     "Uninstall mods",
				ArgsUsage: "<slug>...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("remove needs at least one slug", 1)
					}
					e, err := setup(c)
					if err != nil {
						return err
					}

					for _, slug := range c.Args().Slice() {
						result, err := e.installer.Uninstall(c.Context, slug)
						if err != nil {
							return err
						}
						if result.Outcome == services.NotInstalled {
							pterm.Info.Printfln("%s is not installed", slug)
							continue
						}
						pterm.Success.Println("Uninstalled " + result.Name)
					}
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "Update installed mods to their newest compatible version",
				ArgsUsage: "[slug...]",
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}

					results, err := e.installer.Update(c.Context, c.Args().Slice()...)
					for _, result := range results {
						switch result.Outcome {
						case services.Updated:
							pterm.Success.Printfln("Updated %s to %s", result.Name, result.File)
						default:
							pterm.Info.Printfln("%s: %s", result.Slug, result.Outcome)
						}
					}
					return err
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List installed mods",
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}

					manifest, mods, err := services.List(e.store)
					if err != nil {
						return err
					}
					pterm.Info.Printfln("%s %s, %d mods", manifest.Loader, manifest.GameVersion, len(mods))
					printMods(mods)
					return nil
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.RunContext(ctx, os.Args)
	stop()
	util.Fatal(err)
}

func width(header string, values ...string) int {
	w := runewidth.StringWidth(header)
	for _, v := range values {
		w = max(w, runewidth.StringWidth(v))
	}
	return w
}

func printMods(mods []services.ListedMod) {
	var names, slugs, versions []string
	for _, mod := range mods {
		names = append(names, mod.Name)
		slugs = append(slugs, mod.Slug)
		versions = append(versions, mod.Version)
	}
	lname := width("NAME:", names...)
	lslug := width("SLUG:", slugs...)
	lversion := width("VERSION:", versions...)

	fmt.Println()
	fmt.Println(text.AlignDefault.Apply("NAME:", lname+2) + text.AlignDefault.Apply("SLUG:", lslug+2) + text.AlignDefault.Apply("VERSION:", lversion+2) + "FILENAME:")
	for _, mod := range mods {
		file := mod.File
		if mod.Missing {
			file += " (missing)"
		}
		fmt.Println(text.AlignDefault.Apply(mod.Name, lname+2) + text.AlignDefault.Apply(mod.Slug, lslug+2) + text.AlignDefault.Apply(mod.Version, lversion+2) + text.Bold.Sprint(file))
	}
	fmt.Println()
}

func printSearch(hits []util.SearchHit) {
	var titles, versions []string
	for _, hit := range hits {
		titles = append(titles, hit.Title)
		versions = append(versions, hit.LatestVersion)
	}
	ltitle := width("TITLE:", titles...)
	lversion := width("VERSION:", versions...)

	fmt.Println()
	fmt.Println(text.AlignDefault.Apply("TITLE:", ltitle+2) + text.AlignDefault.Apply("VERSION:", lversion+2) + "SLUG:")
	for _, hit := range hits {
		fmt.Println(text.AlignDefault.Apply(text.Bold.Sprint(hit.Title), ltitle+2) + text.AlignDefault.Apply(hit.LatestVersion, lversion+2) + text.Underline.Sprint(hit.Slug))
		if hit.Description != "" {
			fmt.Println("  " + hit.Description)
		}
	}
	fmt.Println()
}

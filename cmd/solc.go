package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-version"
	"github.com/parthshah1/solwizard/compiler"
	"github.com/urfave/cli/v2"
)

var SolcCmd = &cli.Command{
	Name:  "solc",
	Usage: "Manage Solidity compiler versions",
	Subcommands: []*cli.Command{
		{
			Name:  "install",
			Usage: "Download a solc release into the solc directory",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Exact version or constraint, e.g. 0.6.0 or \"~> 0.8.0\" (env: SOLC_VERSION)",
				},
			},
			Action: func(c *cli.Context) error {
				requested := cfg.SolcVersion
				if c.IsSet("version") {
					requested = c.String("version")
				}

				fmt.Println("Installing...")
				path, err := compiler.NewInstaller(cfg.SolcDir, logger).Install(c.Context, requested)
				if err != nil {
					return err
				}
				fmt.Printf("Installed solc %s to %s\n", requested, path)
				return nil
			},
		},
		{
			Name:  "version",
			Usage: "Show the solc that compile and deploy would use",
			Action: func(c *cli.Context) error {
				solc, err := locateSolc(c.Context, false)
				if err != nil {
					return err
				}
				fmt.Printf("solc %s (%s)\n", solc.Version, solc.Path)
				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List installed solc versions",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "remote",
					Usage: "List released versions available for download instead",
				},
			},
			Action: func(c *cli.Context) error {
				installer := compiler.NewInstaller(cfg.SolcDir, logger)

				if c.Bool("remote") {
					list, err := installer.List(c.Context)
					if err != nil {
						return err
					}
					var versions []*version.Version
					for v := range list.Releases {
						if parsed, err := version.NewVersion(v); err == nil {
							versions = append(versions, parsed)
						}
					}
					sort.Sort(sort.Reverse(version.Collection(versions)))
					fmt.Printf("Released solc versions for %s (latest %s):\n", installer.Platform, list.LatestRelease)
					for _, v := range versions {
						fmt.Printf("  %s\n", v)
					}
					return nil
				}

				versions, err := installer.InstalledVersions()
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					fmt.Printf("No solc versions installed in %s\n", installer.Dir)
					return nil
				}
				fmt.Printf("Installed solc versions in %s:\n", installer.Dir)
				for _, v := range versions {
					fmt.Printf("  %s\n", v)
				}
				return nil
			},
		},
	},
}

// locateSolc finds the configured compiler, downloading it when install is set
// and no matching version is available locally.
func locateSolc(ctx context.Context, install bool) (*compiler.Solc, error) {
	installer := compiler.NewInstaller(cfg.SolcDir, logger)
	if install && cfg.SolcPath == "" {
		if _, ok, err := installer.FindInstalled(cfg.SolcVersion); err == nil && !ok {
			fmt.Println("Installing...")
		}
	}
	return installer.Locate(ctx, compiler.Locator{
		Path:    cfg.SolcPath,
		Version: cfg.SolcVersion,
		Install: install,
	})
}

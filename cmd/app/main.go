package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scraps/internal"
	"github.com/starford/scraps/internal/search"
	pkgconfig "github.com/starford/scraps/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	// An explicit path must exist; the default one may be absent.
	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return []internal.Option{internal.WithConfig(cfg)}, nil
}

// withOptions adapts an action that needs the loaded configuration.
func withOptions(fn func(ctx context.Context, cmd *cli.Command, opts []internal.Option) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, opts)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "scraps",
		Usage:   "Static site generator for a personal wiki of Markdown scraps",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Create a new project with a scraps directory, config and git repository",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return cli.Exit("init: project name is required", 2)
					}
					return internal.Init(ctx, name)
				},
			},
			{
				Name:  "build",
				Usage: "Build the static site into the public directory",
				Action: withOptions(func(ctx context.Context, _ *cli.Command, opts []internal.Option) error {
					stats, err := internal.Build(ctx, opts...)
					if err != nil {
						return err
					}
					slog.Info("build finished",
						slog.Int("scraps", stats.Scraps),
						slog.Int("tags", stats.Tags),
						slog.Int("index_pages", stats.IndexPages),
						slog.Duration("duration", stats.Duration))
					return nil
				}),
			},
			{
				Name:  "serve",
				Usage: "Build, serve and rebuild the site on change",
				Action: withOptions(func(ctx context.Context, _ *cli.Command, opts []internal.Option) error {
					if err := internal.Serve(ctx, opts...); err != nil {
						return fmt.Errorf("app run error: %w", err)
					}
					return nil
				}),
			},
			{
				Name:      "search",
				Usage:     "Fuzzy search scraps",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "logic", Value: "or", Usage: "How keywords combine: or, and"},
					&cli.IntFlag{Name: "num", Aliases: []string{"n"}, Value: 100, Usage: "Maximum number of results"},
				},
				Action: withOptions(func(ctx context.Context, cmd *cli.Command, opts []internal.Option) error {
					if cmd.Args().Len() == 0 {
						return cli.Exit("search: query is required", 2)
					}
					logic, err := search.ParseLogic(cmd.String("logic"))
					if err != nil {
						return err
					}
					return internal.Search(ctx, cmd.Args().First(), logic, int(cmd.Int("num")), opts...)
				}),
			},
			{
				Name:  "tags",
				Usage: "List tags by number of backlinks",
				Action: withOptions(func(ctx context.Context, _ *cli.Command, opts []internal.Option) error {
					return internal.Tags(ctx, opts...)
				}),
			},
			{
				Name:  "lint",
				Usage: "Report links to neither a scrap nor an explicit tag",
				Action: withOptions(func(ctx context.Context, _ *cli.Command, opts []internal.Option) error {
					n, err := internal.Lint(ctx, opts...)
					if err != nil {
						return err
					}
					if n > 0 {
						return cli.Exit("", 1)
					}
					return nil
				}),
			},
			{
				Name:  "mcp",
				Usage: "Serve scrap tools over the Model Context Protocol on stdio",
				Action: withOptions(func(ctx context.Context, _ *cli.Command, opts []internal.Option) error {
					return internal.MCP(ctx, version, opts...)
				}),
			},
			{
				Name:  "template",
				Usage: "Create scraps from templates",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List available templates",
						Action: withOptions(func(ctx context.Context, _ *cli.Command, opts []internal.Option) error {
							return internal.TemplateList(ctx, opts...)
						}),
					},
					{
						Name:      "generate",
						Usage:     "Generate a scrap from a template",
						ArgsUsage: "<template>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Override the title from the template metadata"},
						},
						Action: withOptions(func(ctx context.Context, cmd *cli.Command, opts []internal.Option) error {
							if cmd.Args().Len() == 0 {
								return cli.Exit("template generate: template name is required", 2)
							}
							return internal.TemplateGenerate(ctx, cmd.Args().First(), cmd.String("title"), opts...)
						}),
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

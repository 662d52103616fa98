package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/params"
	"github.com/theduckylittle/registry/internal/domain/search/request"
	catalogusecase "github.com/theduckylittle/registry/internal/usecase/catalog"
	"github.com/theduckylittle/registry/internal/version"
)

func newApp(build factory, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "registryctl",
		Usage:   "Manage registry catalogs and query them",
		Version: version.String(),
		Writer:  out,
		// q_geo values carry commas.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Configuration environment (config/<env>.yaml)",
				Value:   "local",
				Sources: cli.EnvVars("ENV"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Explicit configuration file path, overrides --env",
			},
			&cli.StringFlag{
				Name:    "search-url",
				Usage:   "Search engine URL, overrides the configuration",
				Sources: cli.EnvVars("REGISTRY_SEARCH_URL"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			catalogCommand(build, out),
			loadCommand(build, out),
			searchCommand(build, out),
		},
	}
}

func catalogCommand(build factory, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Create, delete and list catalog indexes",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a catalog index with the layer mapping",
				ArgsUsage: "<catalog>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slug, svc, err := slugAndServices(ctx, cmd, build)
					if err != nil {
						return err
					}
					cat, err := svc.catalogs.Create(ctx, slug)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Catalog %s created succesfully\n", cat.Slug())
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a catalog index and its layers",
				ArgsUsage: "<catalog>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slug, svc, err := slugAndServices(ctx, cmd, build)
					if err != nil {
						return err
					}
					if err := svc.catalogs.Delete(ctx, slug); err != nil {
						if errors.Is(err, domain.ErrCatalogNotFound) {
							return cli.Exit("Catalog does not exist!", 2)
						}
						return err
					}
					fmt.Fprintf(out, "Catalog %s removed succesfully\n", slug)
					return nil
				},
			},
			{
				Name:      "exists",
				Usage:     "Exit 0 when the catalog exists, 2 otherwise",
				ArgsUsage: "<catalog>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slug, svc, err := slugAndServices(ctx, cmd, build)
					if err != nil {
						return err
					}
					ok, err := svc.catalogs.Exists(ctx, slug)
					if err != nil {
						return err
					}
					if !ok {
						return cli.Exit(fmt.Sprintf("catalog %s does not exist", slug), 2)
					}
					fmt.Fprintf(out, "catalog %s exists\n", slug)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List catalogs as JSON",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, err := build(ctx, cmd)
					if err != nil {
						return err
					}
					items, err := svc.catalogs.List(ctx)
					if err != nil {
						return err
					}
					return printJSON(out, items)
				},
			},
		},
	}
}

func loadCommand(build factory, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Create the catalog if needed and index layer documents from JSON files or directories",
		ArgsUsage: "<catalog> <file-or-dir>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return cli.Exit("usage: registryctl load <catalog> <file-or-dir>...", 1)
			}
			svc, err := build(ctx, cmd)
			if err != nil {
				return err
			}
			slug := args[0]

			ok, err := svc.catalogs.Exists(ctx, slug)
			if err != nil {
				return err
			}
			if !ok {
				if _, err := svc.catalogs.Create(ctx, slug); err != nil {
					return err
				}
				fmt.Fprintf(out, "Catalog %s created succesfully\n", slug)
			}

			files, err := expandPaths(args[1:])
			if err != nil {
				return err
			}

			var stats loadStats
			for _, f := range files {
				docs, err := readDocuments(f)
				if err != nil {
					svc.logger.Warn("skipping file", zap.String("file", f), zap.Error(err))
					stats.failed++
					continue
				}
				for _, raw := range docs {
					stats.add(ctx, out, svc, slug, raw)
				}
			}

			fmt.Fprintf(out, "indexed %d, skipped %d, failed %d\n", stats.indexed, stats.skipped, stats.failed)
			if stats.failed > 0 {
				return cli.Exit("some documents were not indexed", 1)
			}
			return nil
		},
	}
}

type loadStats struct {
	indexed, skipped, failed int
}

func (s *loadStats) add(ctx context.Context, out io.Writer, svc *services, slug string, raw []byte) {
	doc, outcome, err := svc.catalogs.Insert(ctx, slug, raw)
	if err != nil {
		s.failed++
		svc.logger.Warn("layer not indexed", zap.Error(err))
		return
	}
	switch outcome {
	case catalogusecase.Indexed:
		s.indexed++
		fmt.Fprintf(out, "Record %s indexed\n", doc.Title())
	case catalogusecase.Skipped:
		s.skipped++
	}
}

func searchCommand(build factory, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a search and print the reshaped response",
		ArgsUsage: "[catalog]",
		// Each command resets the separator setting while it is set up, so the
		// root flag alone does not reach --param.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Search parameter as key=value, repeatable (q_text=parks, q.time=[2000 TO *])",
			},
			&cli.BoolFlag{
				Name:  "compile-only",
				Usage: "Print the engine query without running it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			values, err := parseParams(cmd.StringSlice("param"))
			if err != nil {
				return err
			}
			req, err := request.Decode(params.Flatten(params.Normalize(values)))
			if err != nil {
				return err
			}

			svc, err := build(ctx, cmd)
			if err != nil {
				return err
			}

			if cmd.Bool("compile-only") {
				q, err := svc.search.Compile(ctx, req)
				if err != nil {
					return err
				}
				body, err := q.Encode()
				if err != nil {
					return err
				}
				return printIndented(out, body)
			}

			res, err := svc.search.Search(ctx, cmd.Args().First(), req)
			if err != nil {
				var ee *domain.EngineError
				if errors.As(err, &ee) {
					return fmt.Errorf("%w\n%s", domain.ErrEngineRejected, ee.Body)
				}
				return err
			}
			if res.Response == nil {
				return printIndented(out, res.Original)
			}
			return printJSON(out, res.Response)
		},
	}
}

func slugAndServices(ctx context.Context, cmd *cli.Command, build factory) (string, *services, error) {
	slug := cmd.Args().First()
	if slug == "" || cmd.Args().Len() > 1 {
		return "", nil, cli.Exit(fmt.Sprintf("usage: registryctl catalog %s <catalog>", cmd.Name), 1)
	}
	svc, err := build(ctx, cmd)
	if err != nil {
		return "", nil, err
	}
	return slug, svc, nil
}

// parseParams turns key=value pairs into query values. The first '=' splits.
func parseParams(pairs []string) (map[string][]string, error) {
	values := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: param %q must be key=value", domain.ErrInvalidParameter, p)
		}
		values[k] = append(values[k], v)
	}
	return values, nil
}

// expandPaths replaces directories by the .json files directly inside them, sorted.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// readDocuments reads one layer document, or a JSON array of them, from path.
func readDocuments(path string) ([][]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return [][]byte{trimmed}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	docs := make([][]byte, len(items))
	for i, it := range items {
		docs[i] = it
	}
	return docs, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func printIndented(out io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent output: %w", err)
	}
	buf.WriteByte('\n')
	_, err := out.Write(buf.Bytes())
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mgomes/wikisearch/internal/hits"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Print search results without the interactive screen",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results to print (0 prints all)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return errors.New("search needs a query")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg)
			if err != nil {
				return err
			}
			defer closer.Close() //nolint:errcheck

			resp, err := newSearcher(cfg).Search(ctx, query)
			if err != nil {
				return err
			}
			return printResults(os.Stdout, cfg.LinkOrigin, query, resp, int(c.Int("limit")))
		},
	}
}

func printResults(w io.Writer, linkOrigin, query string, resp *hits.Response, limit int) error {
	results := resp.Results
	if len(results) == 0 {
		_, err := fmt.Fprintf(w, "No results found for %q\n", query)
		return err
	}

	noun := "results"
	if len(results) == 1 {
		noun = "result"
	}
	if _, err := fmt.Fprintf(w, "Found %d %s (%.2f milliseconds)\n\n", len(results), noun, resp.SearchTime*1000); err != nil {
		return err
	}

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	origin := strings.TrimRight(linkOrigin, "/")
	for i, r := range results {
		link := r.URL
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			link = origin + link
		}
		if _, err := fmt.Fprintf(w, "%d. %s  (%.4f)\n   %s\n", i+1, r.Title, r.Score, link); err != nil {
			return err
		}
		if r.Summary != "" {
			if _, err := fmt.Fprintf(w, "   %s\n", r.Summary); err != nil {
				return err
			}
		}
		if i < len(results)-1 {
			fmt.Fprintln(w) //nolint:errcheck
		}
	}
	return nil
}

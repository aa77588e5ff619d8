// Command searchctl queries and administers a running search service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/utafrali/catalogsearch/internal/auth"
	"github.com/utafrali/catalogsearch/pkg/httpclient"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	addrFlag := &cli.StringFlag{
		Name:    "addr",
		Aliases: []string{"a"},
		Usage:   "Base URL of the search service",
		Value:   "http://localhost:8010",
		EnvVars: []string{"SEARCHCTL_ADDR"},
	}
	tokenFlag := &cli.StringFlag{
		Name:     "token",
		Usage:    "Admin bearer token",
		EnvVars:  []string{"SEARCHCTL_TOKEN"},
		Required: true,
	}

	return &cli.App{
		Name:      "searchctl",
		Usage:     "Query and administer the catalog search service",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			addrFlag,
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 60 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a ranked search",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Hits per page"},
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page number, starting at 1"},
					&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Restrict to product or category"},
				},
			},
			{
				Name:      "suggest",
				Usage:     "List autocomplete suggestions for a prefix",
				ArgsUsage: "<prefix>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum suggestions"},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show index size and last hydration time",
				Action: statsCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the index from the source of truth",
				Action: reindexCommand,
				Flags:  []cli.Flag{tokenFlag},
			},
			{
				Name:   "token",
				Usage:  "Mint a bearer token for the admin routes",
				Action: tokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "secret",
						Usage:    "HMAC secret shared with the service",
						EnvVars:  []string{"ADMIN_JWT_SECRET"},
						Required: true,
					},
					&cli.StringFlag{Name: "subject", Usage: "Token subject", Value: "searchctl"},
					&cli.StringFlag{Name: "role", Usage: "Role claim", Value: auth.RoleAdmin},
					&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: time.Hour},
				},
			},
		},
	}
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("search takes exactly one query argument", 2)
	}

	q := url.Values{}
	q.Set("q", c.Args().First())
	if v := c.Int("limit"); v > 0 {
		q.Set("limit", strconv.Itoa(v))
	}
	if v := c.Int("page"); v > 0 {
		q.Set("page", strconv.Itoa(v))
	}
	if v := c.String("kind"); v != "" {
		q.Set("kind", v)
	}
	return call(c, http.MethodGet, "/api/v1/search?"+q.Encode(), "")
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("suggest takes exactly one prefix argument", 2)
	}

	q := url.Values{}
	q.Set("q", c.Args().First())
	if v := c.Int("limit"); v > 0 {
		q.Set("limit", strconv.Itoa(v))
	}
	return call(c, http.MethodGet, "/api/v1/search/suggest?"+q.Encode(), "")
}

func statsCommand(c *cli.Context) error {
	return call(c, http.MethodGet, "/api/v1/search/stats", "")
}

func reindexCommand(c *cli.Context) error {
	return call(c, http.MethodPost, "/api/v1/search/reindex", c.String("token"))
}

func tokenCommand(c *cli.Context) error {
	token, err := auth.NewVerifier(c.String("secret")).Issue(c.String("subject"), c.String("role"), c.Duration("ttl"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("issue token: %v", err), 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, token)
	return err
}

// call performs one request and pretty-prints the JSON body. Non-2xx
// responses are printed too and turned into a non-zero exit.
func call(c *cli.Context, method, path, token string) error {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = c.Duration("timeout")
	if method != http.MethodGet {
		cfg.MaxRetries = 0
	}
	client := httpclient.New(cfg)

	ctx, cancel := context.WithTimeout(c.Context, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.String("addr")+path, nil)
	if err != nil {
		return cli.Exit(fmt.Sprintf("build request: %v", err), 2)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s %s: %v", method, path, err), 1)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cli.Exit(fmt.Sprintf("read response: %v", err), 1)
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	if _, err := fmt.Fprintln(c.App.Writer, string(body)); err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return cli.Exit(fmt.Sprintf("%s %s: %s", method, path, resp.Status), 1)
	}
	return nil
}

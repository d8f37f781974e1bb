package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"waves-server/internal/config"
	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure"
	"waves-server/internal/infrastructure/fetcher"
	"waves-server/internal/infrastructure/htmlextract"
	"waves-server/internal/infrastructure/logger"
	"waves-server/internal/infrastructure/proxy"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a search and print the result envelope as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Print the resolved proxy endpoint with the password redacted",
	Args:  cobra.NoArgs,
	RunE:  runProxy,
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 10, "Maximum number of results (1-20)")
	searchCmd.Flags().Bool("direct", false, "Bypass the proxy")
}

// pipeline is the in-process search stack used by the CLI.
type pipeline struct {
	resolver  *proxy.Resolver
	fetcher   *fetcher.SearchFetcher
	extractor *htmlextract.ResultExtractor
}

func newPipeline(cmd *cobra.Command) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	cfg.LogLevel = "error"
	if verbose {
		cfg.LogLevel = "debug"
	}
	cfg.LogFormat = "console"
	logger.NewWithWriter(cfg, os.Stderr)

	sources, err := infrastructure.BuildConfigSources(cfg.ProxyConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load proxy settings: %w", err)
	}
	resolver := proxy.NewResolver(sources)

	return &pipeline{
		resolver:  resolver,
		fetcher:   infrastructure.ProvideSearchFetcher(cfg, resolver, infrastructure.ProvideQuerySanitizer(cfg)),
		extractor: htmlextract.NewResultExtractor(),
	}, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	direct, _ := cmd.Flags().GetBool("direct")

	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	body, err := p.fetcher.Fetch(cmd.Context(), query, !direct)
	if err != nil {
		return err
	}
	results := p.extractor.Extract(body, search.ClampLimit(limit))

	var endpoint *search.ProxyEndpoint
	if !direct {
		endpoint = p.resolver.Resolve()
	}
	return writeJSON(cmd.OutOrStdout(), search.NewEnvelope(query, endpoint, results))
}

func runProxy(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	endpoint := p.resolver.Resolve()
	if endpoint == nil {
		fmt.Fprintln(out, "no proxy configured")
		return nil
	}
	fmt.Fprintln(out, endpoint.Redacted())
	log.Debug().
		Str("scheme", string(endpoint.Scheme)).
		Bool("authenticated", endpoint.Authenticated()).
		Msg("proxy resolved")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

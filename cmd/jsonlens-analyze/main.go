// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/jsonlens/jsonlens/lib/config"
	"github.com/jsonlens/jsonlens/lib/docstore"
	"github.com/jsonlens/jsonlens/lib/engine"
	"github.com/jsonlens/jsonlens/lib/render"
	"github.com/jsonlens/jsonlens/lib/resultcache"
	"github.com/jsonlens/jsonlens/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("jsonlens-analyze", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to the config file (overrides JSONLENS_CONFIG)")
	outputJSON := flags.Bool("json", false, "print the result as JSON")
	acceptJSONC := flags.Bool("jsonc", false, "accept JSONC input (comments, trailing commas)")
	noStore := flags.Bool("no-store", false, "analyze without persisting")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	showVersion := flags.Bool("version", false, "print version information")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jsonlens-analyze [flags] <file>\n\nUse '-' to read from stdin.\n\nFlags:\n%s", flags.FlagUsages())
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("jsonlens-analyze %s\n", version.Info())
		return nil
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("exactly one input file required")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	raw, err := readInput(flags.Arg(0))
	if err != nil {
		return err
	}
	if *acceptJSONC {
		raw = jsonc.ToJSON(raw)
	}

	e, cleanup, err := buildEngine(cfg, logger, *noStore)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := e.AnalyzeBytes(context.Background(), raw)
	if err != nil {
		return err
	}

	if *outputJSON {
		return printJSON(result)
	}
	printReport(result)
	return nil
}

// loadConfig resolves the configuration: an explicit --config path
// wins, then JSONLENS_CONFIG, then built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("JSONLENS_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// buildEngine wires the engine from the configuration. The returned
// cleanup closes the store if one was opened.
func buildEngine(cfg *config.Config, logger *slog.Logger, noStore bool) (*engine.Engine, func(), error) {
	engineConfig := engine.Config{
		Logger:              logger,
		MaxInputSize:        cfg.MaxInputSize(),
		LargeArrayThreshold: cfg.Analysis.LargeArrayThreshold,
		DeepObjectThreshold: cfg.Analysis.DeepObjectThreshold,
		PathSampleCap:       cfg.Analysis.PathSampleCap,
		ChunkThreshold:      cfg.ChunkThreshold(),
		TargetChunkSize:     cfg.TargetChunkSize(),
	}
	engineConfig.AnalysisTimeout, _ = cfg.AnalysisTimeout()

	ttl, _ := cfg.CacheTTL()
	engineConfig.Cache = resultcache.New(resultcache.Config{
		TTL:      ttl,
		Capacity: cfg.Cache.Capacity,
		Logger:   logger,
	})

	cleanup := func() {}
	if !noStore {
		compression, err := docstore.ParseCompressionTag(cfg.Storage.Compression)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating storage directory: %w", err)
		}
		store, err := docstore.Open(docstore.Config{
			Path:        cfg.Storage.Path,
			PoolSize:    cfg.Storage.PoolSize,
			Compression: compression,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		engineConfig.Store = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error("closing store", "error", err)
			}
		}
	}

	return engine.New(engineConfig), cleanup, nil
}

// jsonResult is the --json output layout.
type jsonResult struct {
	DocumentID   string   `json:"document_id,omitempty"`
	Checksum     string   `json:"checksum"`
	Size         int64    `json:"size"`
	NodeCount    int64    `json:"node_count"`
	MaxDepth     int      `json:"max_depth"`
	Complexity   string   `json:"complexity"`
	Mode         string   `json:"mode"`
	Level        string   `json:"level"`
	ChunkCount   int      `json:"chunk_count"`
	LargeArrays  int      `json:"large_arrays"`
	DeepObjects  int      `json:"deep_objects"`
	Deduplicated bool     `json:"deduplicated"`
	ElapsedMs    float64  `json:"elapsed_ms"`
	SamplePaths  []string `json:"sample_paths,omitempty"`
}

func printJSON(result *engine.Result) error {
	paths := result.Profile.Paths
	if len(paths) > 10 {
		paths = paths[:10]
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonResult{
		DocumentID:   result.DocumentID,
		Checksum:     result.Profile.Checksum.Hex(),
		Size:         result.Profile.Size,
		NodeCount:    result.Profile.NodeCount,
		MaxDepth:     result.Profile.MaxDepth,
		Complexity:   result.Profile.Complexity.String(),
		Mode:         result.Decision.Mode.String(),
		Level:        result.Decision.Level.String(),
		ChunkCount:   len(result.Chunks),
		LargeArrays:  len(result.Profile.LargeArrays),
		DeepObjects:  len(result.Profile.DeepObjects),
		Deduplicated: result.Deduplicated,
		ElapsedMs:    float64(result.Profile.Elapsed.Microseconds()) / 1000,
		SamplePaths:  paths,
	})
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(14)

	levelStyles = map[render.Level]lipgloss.Style{
		render.LevelExcellent: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		render.LevelGood:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		render.LevelWarning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		render.LevelCritical:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

func printReport(result *engine.Result) {
	profile := result.Profile

	fmt.Println(titleStyle.Render("Document analysis"))
	row("Checksum", profile.Checksum.Hex())
	if result.DocumentID != "" {
		row("Document ID", result.DocumentID)
	}
	row("Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(profile.Size)), profile.Size))
	row("Nodes", humanize.Comma(profile.NodeCount))
	row("Max depth", fmt.Sprintf("%d", profile.MaxDepth))
	row("Complexity", profile.Complexity.String())
	row("Mode", result.Decision.Mode.String())
	row("Level", levelStyles[result.Decision.Level].Render(result.Decision.Level.String()))
	if len(result.Chunks) > 0 {
		row("Chunks", fmt.Sprintf("%d", len(result.Chunks)))
	}
	if len(profile.LargeArrays) > 0 {
		row("Large arrays", fmt.Sprintf("%d (first: %s)", len(profile.LargeArrays), profile.LargeArrays[0].Path))
	}
	if len(profile.DeepObjects) > 0 {
		row("Deep objects", fmt.Sprintf("%d (first: %s)", len(profile.DeepObjects), profile.DeepObjects[0].Path))
	}
	if result.Deduplicated {
		row("Deduplicated", "yes")
	}
	row("Elapsed", profile.Elapsed.String())
}

func row(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label), value)
}

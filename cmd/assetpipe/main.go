// Command assetpipe packs images into texture atlas pages and compiles
// WGSL shaders to SPIR-V as a build step.
//
// Usage:
//
//	assetpipe -src assets -src third_party/icons -out build/assets
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/assetpipe"
)

// roots collects repeated -src flags.
type roots []string

func (r *roots) String() string { return strings.Join(*r, ",") }

func (r *roots) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	def := assetpipe.DefaultConfig()
	var src roots
	flag.Var(&src, "src", "source directory (repeatable)")
	var (
		out      = flag.String("out", "build/assets", "output directory")
		name     = flag.String("name", def.AtlasName, "atlas name")
		pageSize = flag.Int("page", def.PageSize, "atlas page size in pixels")
		maxPages = flag.Int("max-pages", def.MaxPages, "maximum number of atlas pages")
		padding  = flag.Int("padding", def.Padding, "padding between images in pixels")
		target   = flag.String("target", def.ShaderTarget, "shader bytecode target")
		workers  = flag.Int("workers", 0, "worker count (0 = GOMAXPROCS)")
		cacheP   = flag.String("cache", "", "cache file (default <out>/"+assetpipe.DefaultCacheFile+")")
		diff     = flag.Bool("diff", false, "print the descriptor diff")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if len(src) == 0 {
		src = roots{"assets"}
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	assetpipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := def
	cfg.SourceRoots = src
	cfg.OutputDir = *out
	cfg.AtlasName = *name
	cfg.PageSize = *pageSize
	cfg.MaxPages = *maxPages
	cfg.Padding = *padding
	cfg.ShaderTarget = *target
	cfg.Workers = *workers
	cfg.CachePath = *cacheP

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	report, err := assetpipe.Build(cfg, assetpipe.OpenCache(cfg))
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	log.Printf("%s in %v\n", report, report.Duration)
	if *diff && report.Diff != "" {
		fmt.Print(report.Diff)
	}
}

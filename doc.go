// Package assetpipe is a build-time asset pipeline for real-time graphics
// clients. It packs source images into fixed-size texture atlas pages,
// compiles WGSL shaders to SPIR-V, and writes versioned descriptors that the
// atlas package loads at runtime.
//
// # Quick Start
//
//	cfg := assetpipe.DefaultConfig()
//	cfg.SourceRoots = []string{"assets"}
//	cfg.OutputDir = "build/assets"
//
//	c := assetpipe.OpenCache(cfg)
//	report, err := assetpipe.Build(cfg, c)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(report)
//
// # Incremental Builds
//
// The cache handle records a content fingerprint for every identifier and a
// content key for every page. Each build repacks the full asset set from
// image headers alone; because packing is deterministic, an edit that keeps
// an image's size changes only the key of the page holding it, and only
// that page is rasterized again. Shaders are recompiled only when their
// source changed. A failed shader compilation is never cached.
//
// # Failure Model
//
// Build does all fallible work before it writes any output. When it returns
// an error, the previous descriptor and its page files are left untouched.
// A corrupt cache file is not an error: the cache starts empty, the
// condition is logged at warn level, and Report.CacheRecovered carries it.
//
// # Logging
//
// assetpipe is silent by default. See SetLogger.
package assetpipe

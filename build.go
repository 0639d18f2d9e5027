package assetpipe

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/assetpipe/cache"
	"github.com/gogpu/assetpipe/descriptor"
	"github.com/gogpu/assetpipe/internal/fsutil"
	"github.com/gogpu/assetpipe/internal/imageio"
	"github.com/gogpu/assetpipe/internal/logging"
	"github.com/gogpu/assetpipe/internal/parallel"
	"github.com/gogpu/assetpipe/pack"
	"github.com/gogpu/assetpipe/scan"
	"github.com/gogpu/assetpipe/shader"
)

// shaderDir is the output subdirectory for shader bytecode.
const shaderDir = "shaders"

// OpenCache opens the build cache at cfg's cache path under cfg's
// fingerprint. It never fails; see cache.Open.
func OpenCache(cfg Config) *cache.Cache {
	return cache.Open(cfg.cachePath(), cfg.Fingerprint())
}

// Build scans the source roots, packs every image into atlas pages,
// compiles every shader, and writes the descriptor and shader manifest.
//
// Work recorded in c is skipped: a page whose content key is unchanged is
// not rasterized again, and a shader whose source is unchanged is not
// recompiled. A nil cache rebuilds everything and persists nothing.
//
// All fallible work happens before any output is written, so on error the
// previous descriptor and artifacts stay valid and c is not saved.
func Build(cfg Config, c *cache.Cache, opts ...BuildOption) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.New(cfg.Fingerprint())
	}
	o := defaultBuildOptions(&cfg)
	for _, opt := range opts {
		opt(&o)
	}
	start := o.now()
	log := logging.Logger()

	target, err := shader.ParseTarget(cfg.ShaderTarget)
	if err != nil {
		return nil, err
	}
	compiler, err := shader.NewCompiler(target)
	if err != nil {
		return nil, err
	}

	assets, err := scan.Scan(scan.Config{Roots: cfg.SourceRoots, Extensions: extensionKinds()})
	if err != nil {
		return nil, err
	}
	images := scan.Filter(assets, scan.KindImage)
	shaders := scan.Filter(assets, scan.KindShader)

	items, err := measure(images)
	if err != nil {
		return nil, err
	}
	layout, err := pack.Pack(items, cfg.packConfig())
	if err != nil {
		return nil, err
	}

	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()

	b := &builder{
		cfg:      &cfg,
		cache:    c,
		layout:   layout,
		images:   byID(images),
		compiler: compiler,
	}
	pages, err := b.rasterize(pool)
	if err != nil {
		return nil, err
	}
	compiled, err := b.compile(pool, shaders)
	if err != nil {
		return nil, err
	}

	// Everything below writes output. Page files are named by content, so
	// nothing written before the descriptor touches a file the previous
	// descriptor references; the descriptor goes last.
	if err := b.commitPages(pages); err != nil {
		return nil, err
	}
	if err := b.commitShaders(compiled); err != nil {
		return nil, err
	}
	if err := descriptor.WriteShaders(cfg.shaderManifestPath(), b.manifest(target, compiled)); err != nil {
		return nil, err
	}
	desc := b.descriptor(pages)
	diff, err := writeDescriptor(cfg.descriptorPath(), desc)
	if err != nil {
		return nil, err
	}

	c.PrunePages(len(layout.Pages))
	stale := removeStale(&cfg, desc)
	live := make([]string, len(assets))
	for i, a := range assets {
		live[i] = a.ID
	}
	pruned := c.Prune(live)

	if err := c.Save(); err != nil {
		return nil, err
	}

	r := &Report{
		Images:         len(images),
		Shaders:        len(shaders),
		Pages:          len(layout.Pages),
		Descriptor:     cfg.descriptorPath(),
		ShaderManifest: cfg.shaderManifestPath(),
		Diff:           diff,
		Pruned:         pruned,
		StaleFiles:     stale,
		CacheRecovered: c.Recovered(),
	}
	for _, p := range pages {
		if p.data != nil {
			r.PagesRebuilt++
		} else {
			r.PagesSkipped++
		}
	}
	for _, s := range compiled {
		if s.code != nil {
			r.ShadersCompiled++
		} else {
			r.ShadersSkipped++
		}
	}
	r.Duration = o.now().Sub(start)

	log.Info("assetpipe: build complete",
		"images", r.Images, "pages", r.Pages,
		"pagesRebuilt", r.PagesRebuilt, "pagesSkipped", r.PagesSkipped,
		"shadersCompiled", r.ShadersCompiled, "shadersSkipped", r.ShadersSkipped,
		"duration", r.Duration)
	return r, nil
}

// extensionKinds maps every supported source extension to its asset kind.
func extensionKinds() map[string]scan.Kind {
	exts := make(map[string]scan.Kind)
	for _, ext := range imageio.Extensions() {
		exts[ext] = scan.KindImage
	}
	for _, ext := range shader.Extensions() {
		exts[ext] = scan.KindShader
	}
	return exts
}

// measure reads image headers and returns the packer items.
func measure(images []scan.Asset) ([]pack.Item, error) {
	items := make([]pack.Item, 0, len(images))
	for _, a := range images {
		f, err := imageFormat(a)
		if err != nil {
			return nil, err
		}
		w, h, err := imageio.DecodeConfig(f, a.Data)
		if err != nil {
			return nil, fsutil.Wrap("decode", a.Path, err)
		}
		items = append(items, pack.Item{ID: a.ID, Width: w, Height: h})
	}
	return items, nil
}

// imageFormat resolves the codec from the extension the scanner matched.
func imageFormat(a scan.Asset) (imageio.Format, error) {
	f, ok := imageio.FormatForPath(a.Ext)
	if !ok {
		return 0, fsutil.Wrap("decode", a.Path, imageio.ErrUnsupportedFormat)
	}
	return f, nil
}

func byID(assets []scan.Asset) map[string]scan.Asset {
	m := make(map[string]scan.Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return m
}

type builder struct {
	cfg      *Config
	cache    *cache.Cache
	layout   *pack.Layout
	images   map[string]scan.Asset
	compiler *shader.Compiler
}

// pageResult is one page of the new layout. data is nil for skipped pages.
type pageResult struct {
	index int
	key   string
	file  string // relative to OutputDir
	path  string
	data  []byte
}

// shaderResult is one shader of the new build. code is nil for skipped
// shaders.
type shaderResult struct {
	asset    scan.Asset
	stage    shader.Stage
	artifact string // relative to OutputDir, slash-separated
	code     []byte
}

// pageKey hashes everything that determines a page's pixels.
func pageKey(p *pack.Page, images map[string]scan.Asset) string {
	rects := append([]pack.PackedRect(nil), p.Rects...)
	sort.Slice(rects, func(i, j int) bool { return rects[i].ID < rects[j].ID })

	h := sha256.New()
	fmt.Fprintf(h, "%dx%d\n", p.Width, p.Height)
	for _, r := range rects {
		fmt.Fprintf(h, "%s\x00%s\x00%d,%d,%d,%d\n",
			r.ID, images[r.ID].Fingerprint, r.X, r.Y, r.Width, r.Height)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// rasterize composes every page that needs rebuilding in parallel.
func (b *builder) rasterize(pool *parallel.WorkerPool) ([]pageResult, error) {
	results := make([]pageResult, len(b.layout.Pages))
	var jobs []func() error

	for i := range b.layout.Pages {
		p := &b.layout.Pages[i]
		res := &results[i]
		res.index = p.Index
		res.key = pageKey(p, b.images)
		res.file = b.cfg.pageFile(p.Index, res.key)
		res.path = filepath.Join(b.cfg.OutputDir, res.file)

		if !b.pageDirty(p, res.key) {
			logging.Logger().Debug("assetpipe: page unchanged", "page", p.Index)
			continue
		}
		jobs = append(jobs, func() error {
			data, err := b.composePage(p)
			if err != nil {
				return err
			}
			res.data = data
			return nil
		})
	}

	if err := parallel.FirstError(pool.Run(jobs)); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *builder) pageDirty(p *pack.Page, key string) bool {
	if b.cache.ShouldRebuildPage(p.Index, key) {
		return true
	}
	for _, r := range p.Rects {
		if b.cache.ShouldRebuild(r.ID, b.images[r.ID].Fingerprint) {
			return true
		}
	}
	return false
}

// composePage blits every member image into a transparent page and
// encodes it as PNG.
func (b *builder) composePage(p *pack.Page) ([]byte, error) {
	dst := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for _, r := range p.Rects {
		a := b.images[r.ID]
		f, err := imageFormat(a)
		if err != nil {
			return nil, err
		}
		src, err := imageio.Decode(f, a.Data)
		if err != nil {
			return nil, fsutil.Wrap("decode", a.Path, err)
		}
		if sb := src.Bounds(); sb.Dx() != r.Width || sb.Dy() != r.Height {
			return nil, fsutil.Wrap("decode", a.Path,
				fmt.Errorf("decoded %dx%d, header says %dx%d", sb.Dx(), sb.Dy(), r.Width, r.Height))
		}
		xdraw.Copy(dst, image.Pt(r.X, r.Y), src, src.Bounds(), xdraw.Src, nil)
	}

	data, err := imageio.EncodePNG(dst)
	if err != nil {
		return nil, fmt.Errorf("assetpipe: page %d: %w", p.Index, err)
	}
	logging.Logger().Debug("assetpipe: page rasterized", "page", p.Index, "images", len(p.Rects),
		"utilization", p.Utilization())
	return data, nil
}

// compile compiles every changed shader in parallel. All compile errors
// are returned together.
func (b *builder) compile(pool *parallel.WorkerPool, shaders []scan.Asset) ([]shaderResult, error) {
	results := make([]shaderResult, len(shaders))
	var jobs []func() error

	for i, a := range shaders {
		stage, ok := shader.StageForPath(a.ID)
		if !ok {
			return nil, fmt.Errorf("assetpipe: %s: no shader stage", a.Path)
		}
		res := &results[i]
		res.asset = a
		res.stage = stage
		res.artifact = shaderDir + "/" + shader.ArtifactName(a.ID, b.compiler.Target())

		if !b.cache.ShouldRebuild(a.ID, a.Fingerprint) {
			logging.Logger().Debug("assetpipe: shader unchanged", "id", a.ID)
			continue
		}
		jobs = append(jobs, func() error {
			code, err := b.compiler.Compile(a.ID, string(a.Data), stage)
			if err != nil {
				return err
			}
			res.code = code
			return nil
		})
	}

	if err := errors.Join(pool.Run(jobs)...); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *builder) commitPages(pages []pageResult) error {
	for _, p := range pages {
		if p.data != nil {
			if err := fsutil.WriteFileAtomic(p.path, p.data, 0o644); err != nil {
				return err
			}
		}
		b.cache.RecordPage(p.index, p.key, p.path)
		for _, r := range b.layout.Pages[p.index].Rects {
			b.cache.Record(r.ID, b.images[r.ID].Fingerprint, p.path)
		}
	}
	return nil
}

func (b *builder) commitShaders(shaders []shaderResult) error {
	for _, s := range shaders {
		if s.code == nil {
			continue
		}
		path := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(s.artifact))
		if err := fsutil.WriteFileAtomic(path, s.code, 0o644); err != nil {
			return err
		}
		b.cache.Record(s.asset.ID, s.asset.Fingerprint, path)
		logging.Logger().Debug("assetpipe: shader compiled", "id", s.asset.ID, "bytes", len(s.code))
	}
	return nil
}

func (b *builder) descriptor(pages []pageResult) *descriptor.Descriptor {
	cfg := b.layout.Config
	d := &descriptor.Descriptor{
		Version:    descriptor.FormatVersion,
		PageWidth:  cfg.PageWidth,
		PageHeight: cfg.PageHeight,
		Padding:    cfg.Padding,
		Pages:      make([]descriptor.Page, len(b.layout.Pages)),
		Entries:    make([]descriptor.Entry, 0, len(b.layout.Rects)),
	}
	for i, p := range b.layout.Pages {
		d.Pages[i] = descriptor.Page{
			Index:  p.Index,
			Width:  p.Width,
			Height: p.Height,
			File:   pages[i].file,
		}
	}
	for _, r := range b.layout.Rects {
		d.Entries = append(d.Entries, descriptor.Entry{
			ID:     r.ID,
			Page:   r.Page,
			X:      r.X,
			Y:      r.Y,
			Width:  r.Width,
			Height: r.Height,
		})
	}
	return d
}

func (b *builder) manifest(target shader.Target, shaders []shaderResult) *descriptor.ShaderManifest {
	m := &descriptor.ShaderManifest{
		Version: descriptor.FormatVersion,
		Target:  target.String(),
		Shaders: make([]descriptor.ShaderArtifact, len(shaders)),
	}
	for i, s := range shaders {
		m.Shaders[i] = descriptor.ShaderArtifact{
			ID:                s.asset.ID,
			Stage:             s.stage.String(),
			BytecodeFile:      s.artifact,
			SourceFingerprint: s.asset.Fingerprint,
		}
	}
	return m
}

// writeDescriptor writes d to path and returns a unified diff against the
// descriptor it replaced.
func writeDescriptor(path string, d *descriptor.Descriptor) (string, error) {
	next, err := d.Encode()
	if err != nil {
		return "", err
	}
	prev, err := os.ReadFile(path)
	if err != nil {
		prev = nil
	}
	if err := descriptor.WriteAtlas(path, d); err != nil {
		return "", err
	}
	return descriptorDiff(filepath.Base(path), prev, next), nil
}

// removeStale deletes page files of this atlas in the output directory that
// d does not reference and returns the ones removed. It runs only after d
// is written, so it also collects pages left behind by failed builds.
func removeStale(cfg *Config, d *descriptor.Descriptor) []string {
	live := make(map[string]struct{}, len(d.Pages))
	for _, p := range d.Pages {
		live[p.File] = struct{}{}
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		logging.Logger().Warn("assetpipe: cannot list output directory", "path", cfg.OutputDir, "err", err)
		return nil
	}
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !cfg.isPageFile(name) {
			continue
		}
		if _, ok := live[name]; ok {
			continue
		}
		path := filepath.Join(cfg.OutputDir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Logger().Warn("assetpipe: cannot remove stale page", "path", path, "err", err)
			continue
		}
		removed = append(removed, path)
	}
	return removed
}

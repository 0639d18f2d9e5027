package assetpipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// Report summarizes a successful Build.
type Report struct {
	Images  int
	Shaders int
	Pages   int

	PagesRebuilt    int
	PagesSkipped    int
	ShadersCompiled int
	ShadersSkipped  int

	// Descriptor and ShaderManifest are the written file paths.
	Descriptor     string
	ShaderManifest string

	// Diff is a unified diff of the descriptor against the one it
	// replaced. Empty when nothing changed.
	Diff string

	// Pruned lists identifiers dropped from the cache because their
	// source files are gone.
	Pruned []string

	// StaleFiles lists page files removed because the new descriptor no
	// longer references them.
	StaleFiles []string

	// CacheRecovered is the discarded cache's *cache.CorruptError, or nil.
	CacheRecovered error

	Duration time.Duration
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d images on %d pages (%d rebuilt, %d skipped); ",
		r.Images, r.Pages, r.PagesRebuilt, r.PagesSkipped)
	fmt.Fprintf(&sb, "%d shaders (%d compiled, %d skipped)",
		r.Shaders, r.ShadersCompiled, r.ShadersSkipped)
	if len(r.StaleFiles) > 0 {
		fmt.Fprintf(&sb, "; %d stale page files removed", len(r.StaleFiles))
	}
	if r.CacheRecovered != nil {
		sb.WriteString("; cache discarded")
	}
	return sb.String()
}

// descriptorDiff returns a unified diff of two descriptor encodings. A
// missing previous descriptor diffs against /dev/null.
func descriptorDiff(name string, prev, next []byte) string {
	from := "a/" + name
	if prev == nil {
		from = "/dev/null"
	}
	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(prev),
		B:        splitLines(next),
		FromFile: from,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return s
}

// splitLines splits s after each newline. Unlike difflib.SplitLines it
// adds no trailing line, so an empty input yields no lines.
func splitLines(s []byte) []string {
	if len(s) == 0 {
		return []string{}
	}
	lines := strings.SplitAfter(string(s), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

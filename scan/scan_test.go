package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/assetpipe/internal/fsutil"
)

var testExts = map[string]Kind{
	".png":       KindImage,
	".vert.wgsl": KindShader,
	".frag.wgsl": KindShader,
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_DiscoversSortedAssets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ui", "button.png"), "btn")
	writeFile(t, filepath.Join(root, "hero.PNG"), "hero")
	writeFile(t, filepath.Join(root, "shaders", "sprite.frag.wgsl"), "frag")
	writeFile(t, filepath.Join(root, "readme.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".git", "x.png"), "hidden dir")
	writeFile(t, filepath.Join(root, "ui", ".tmp.png"), "hidden file")

	assets, err := Scan(Config{Roots: []string{root}, Extensions: testExts})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []struct {
		id   string
		kind Kind
		ext  string
	}{
		{"hero.PNG", KindImage, ".png"},
		{"shaders/sprite.frag.wgsl", KindShader, ".frag.wgsl"},
		{"ui/button.png", KindImage, ".png"},
	}
	if len(assets) != len(want) {
		t.Fatalf("got %d assets, want %d: %+v", len(assets), len(want), assets)
	}
	for i, w := range want {
		a := assets[i]
		if a.ID != w.id || a.Kind != w.kind || a.Ext != w.ext {
			t.Errorf("asset[%d] = {%q %v %q}, want {%q %v %q}", i, a.ID, a.Kind, a.Ext, w.id, w.kind, w.ext)
		}
	}
	if string(assets[2].Data) != "btn" {
		t.Errorf("Data = %q, want %q", assets[2].Data, "btn")
	}
	if assets[2].Fingerprint != Fingerprint([]byte("btn")) {
		t.Error("Fingerprint does not match content hash")
	}
}

func TestScan_MultipleRootsMerge(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "z.png"), "z")
	writeFile(t, filepath.Join(b, "a.png"), "a")

	assets, err := Scan(Config{Roots: []string{a, b}, Extensions: testExts})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(assets) != 2 || assets[0].ID != "a.png" || assets[1].ID != "z.png" {
		t.Errorf("assets = %+v, want a.png then z.png", assets)
	}
}

func TestScan_DuplicateIdentifier(t *testing.T) {
	tests := []struct {
		name         string
		first, other string
	}{
		{"same path in two roots", "ui/icon.png", "ui/icon.png"},
		{"case only", "Hero.png", "hero.png"},
		{"normalization only", "caf\u00e9.png", "cafe\u0301.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := t.TempDir(), t.TempDir()
			writeFile(t, filepath.Join(a, tt.first), "1")
			writeFile(t, filepath.Join(b, tt.other), "2")

			_, err := Scan(Config{Roots: []string{a, b}, Extensions: testExts})
			if !errors.Is(err, ErrDuplicateIdentifier) {
				t.Fatalf("err = %v, want ErrDuplicateIdentifier", err)
			}
			var de *DuplicateError
			if !errors.As(err, &de) {
				t.Fatalf("err = %T, want *DuplicateError", err)
			}
			if de.First != filepath.Join(a, tt.first) || de.Second != filepath.Join(b, tt.other) {
				t.Errorf("paths = (%s, %s), want both files named", de.First, de.Second)
			}
		})
	}
}

func TestScan_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := Scan(Config{Roots: []string{missing}, Extensions: testExts})
	if !errors.Is(err, fsutil.ErrIO) {
		t.Fatalf("err = %v, want IO failure", err)
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct{ in, want string }{
		{filepath.Join("ui", "a.png"), "ui/a.png"},
		{filepath.Join("ui", ".", "b.png"), "ui/b.png"},
		{"cafe\u0301.png", "caf\u00e9.png"},
	}
	for _, tt := range tests {
		if got := Identifier(tt.in); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatch_LongestExtension(t *testing.T) {
	exts := map[string]Kind{".wgsl": KindShader, ".frag.wgsl": KindShader, ".png": KindImage}
	ext, kind, ok := match("Light.FRAG.wgsl", exts)
	if !ok || ext != ".frag.wgsl" || kind != KindShader {
		t.Errorf("match = (%q, %v, %v), want (.frag.wgsl, shader, true)", ext, kind, ok)
	}
	if _, _, ok := match(".png", exts); ok {
		t.Error("a bare extension is not a file name")
	}
}

func TestFilter(t *testing.T) {
	assets := []Asset{{ID: "a", Kind: KindImage}, {ID: "b", Kind: KindShader}, {ID: "c", Kind: KindImage}}
	got := Filter(assets, KindImage)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Filter(image) = %+v", got)
	}
	if KindShader.String() != "shader" || Kind(0).String() != "unknown" {
		t.Error("Kind.String mismatch")
	}
}

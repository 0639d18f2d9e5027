package shader

import (
	"errors"
	"testing"
)

const vertexWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

const fragmentWGSL = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

const computeWGSL = `
@compute @workgroup_size(1)
fn main() {
}
`

func newSPIRV(t *testing.T) *Compiler {
	t.Helper()
	c, err := NewCompiler(TargetSPIRV)
	if err != nil {
		t.Fatalf("NewCompiler: %v", err)
	}
	return c
}

func TestCompile_Stages(t *testing.T) {
	c := newSPIRV(t)
	tests := []struct {
		id    string
		src   string
		stage Stage
	}{
		{"quad.vert.wgsl", vertexWGSL, StageVertex},
		{"quad.frag.wgsl", fragmentWGSL, StageFragment},
		{"noop.comp.wgsl", computeWGSL, StageCompute},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			code, err := c.Compile(tt.id, tt.src, tt.stage)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			words := Words(code)
			if len(words) < 5 {
				t.Fatalf("got %d words, want a full SPIR-V header", len(words))
			}
			if words[0] != spirvMagic {
				t.Errorf("magic = %#x, want %#x", words[0], spirvMagic)
			}
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	c := newSPIRV(t)
	a, err := c.Compile("f", fragmentWGSL, StageFragment)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, err := c.Compile("f", fragmentWGSL, StageFragment)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if string(a) != string(b) {
		t.Error("compiling the same source twice produced different bytecode")
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	c := newSPIRV(t)
	_, err := c.Compile("broken.frag.wgsl", "@fragment\nfn fs_main( -> {\n", StageFragment)
	if !errors.Is(err, ErrShaderCompile) {
		t.Fatalf("err = %v, want ErrShaderCompile", err)
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T, want *CompileError", err)
	}
	if ce.ID != "broken.frag.wgsl" || ce.Stage != StageFragment {
		t.Errorf("CompileError = %+v, want ID and stage filled in", ce)
	}
	if ce.Diagnostic == "" {
		t.Error("Diagnostic is empty")
	}
}

func TestCompile_MissingEntryPoint(t *testing.T) {
	c := newSPIRV(t)
	_, err := c.Compile("quad.vert.wgsl", fragmentWGSL, StageVertex)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CompileError", err)
	}
	if ce.Diagnostic != "no @vertex entry point" {
		t.Errorf("Diagnostic = %q, want %q", ce.Diagnostic, "no @vertex entry point")
	}
}

func TestNewCompiler_UnsupportedTarget(t *testing.T) {
	if _, err := NewCompiler(Target(99)); !errors.Is(err, ErrUnsupportedTarget) {
		t.Errorf("err = %v, want ErrUnsupportedTarget", err)
	}
}

func TestSPIRVValidate(t *testing.T) {
	b := spirvBackend{}
	if err := b.validate([]byte{1, 2, 3}); err == nil {
		t.Error("short module should fail validation")
	}
	bad := make([]byte, 20)
	if err := b.validate(bad); err == nil {
		t.Error("zero magic should fail validation")
	}
	good := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}
	if err := b.validate(good); err != nil {
		t.Errorf("validate(header) = %v, want nil", err)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		diag      string
		line, col int
	}{
		{"parse error at 12:5: expected ')'", 12, 5},
		{"error: unexpected token", 0, 0},
	}
	for _, tt := range tests {
		line, col := parseLocation(tt.diag)
		if line != tt.line || col != tt.col {
			t.Errorf("parseLocation(%q) = %d:%d, want %d:%d", tt.diag, line, col, tt.line, tt.col)
		}
	}
}

func TestStageLookup(t *testing.T) {
	tests := []struct {
		path string
		want Stage
		ok   bool
	}{
		{"ui/sprite.vert.wgsl", StageVertex, true},
		{"ui/Sprite.FRAG.wgsl", StageFragment, true},
		{"blur.comp.wgsl", StageCompute, true},
		{"lib.wgsl", 0, false},
	}
	for _, tt := range tests {
		got, ok := StageForPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("StageForPath(%q) = (%v, %v), want (%v, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}

	for _, s := range []Stage{StageVertex, StageFragment, StageCompute} {
		back, err := ParseStage(s.String())
		if err != nil || back != s {
			t.Errorf("ParseStage(%q) = (%v, %v), want %v", s.String(), back, err, s)
		}
	}
	if _, err := ParseStage("geometry"); err == nil {
		t.Error("ParseStage(geometry) should fail")
	}
	if got := len(Extensions()); got != 3 {
		t.Errorf("len(Extensions()) = %d, want 3", got)
	}
}

func TestTargetAndArtifactName(t *testing.T) {
	tg, err := ParseTarget("spirv")
	if err != nil || tg != TargetSPIRV {
		t.Fatalf("ParseTarget(spirv) = (%v, %v)", tg, err)
	}
	if _, err := ParseTarget("dxil"); err == nil {
		t.Error("ParseTarget(dxil) should fail")
	}
	if got := ArtifactName("ui/sprite.vert.wgsl", TargetSPIRV); got != "ui/sprite.vert.spv" {
		t.Errorf("ArtifactName = %q, want ui/sprite.vert.spv", got)
	}
}

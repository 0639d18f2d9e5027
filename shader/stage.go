package shader

import (
	"fmt"
	"sort"
	"strings"
)

// Stage is a pipeline stage a shader source is compiled for.
type Stage uint8

// Supported stages.
const (
	StageVertex Stage = iota + 1
	StageFragment
	StageCompute
)

type stageInfo struct {
	name      string
	ext       string // source extension
	attribute string // WGSL entry-point attribute
}

var stages = map[Stage]stageInfo{
	StageVertex:   {"vertex", ".vert.wgsl", "@vertex"},
	StageFragment: {"fragment", ".frag.wgsl", "@fragment"},
	StageCompute:  {"compute", ".comp.wgsl", "@compute"},
}

func (s Stage) String() string {
	if info, ok := stages[s]; ok {
		return info.name
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Extension returns the source file extension for s.
func (s Stage) Extension() string {
	return stages[s].ext
}

// ParseStage resolves a stage by name ("vertex", "fragment", "compute").
func ParseStage(name string) (Stage, error) {
	for s, info := range stages {
		if info.name == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("shader: unknown stage %q", name)
}

// StageForPath resolves the stage from a source file name.
func StageForPath(path string) (Stage, bool) {
	lower := strings.ToLower(path)
	for s, info := range stages {
		if strings.HasSuffix(lower, info.ext) {
			return s, true
		}
	}
	return 0, false
}

// Extensions returns the source extensions of every stage, sorted.
func Extensions() []string {
	out := make([]string, 0, len(stages))
	for _, info := range stages {
		out = append(out, info.ext)
	}
	sort.Strings(out)
	return out
}

// Target is a bytecode format.
type Target uint8

// Supported targets.
const (
	TargetSPIRV Target = iota + 1
)

var targetNames = map[Target]string{
	TargetSPIRV: "spirv",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Target(%d)", uint8(t))
}

// ParseTarget resolves a target by name.
func ParseTarget(name string) (Target, error) {
	for t, n := range targetNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("shader: unknown target %q", name)
}

// ArtifactName returns the bytecode file name for a source identifier:
// the ".wgsl" suffix is replaced by the target's extension, so
// "ui/sprite.vert.wgsl" becomes "ui/sprite.vert.spv".
func ArtifactName(id string, t Target) string {
	base := id
	if strings.HasSuffix(strings.ToLower(base), ".wgsl") {
		base = base[:len(base)-len(".wgsl")]
	}
	b, ok := backends[t]
	if !ok {
		return base + ".bin"
	}
	return base + b.extension()
}

package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"

	"github.com/gogpu/naga"
)

// backend is the capability every Target provides.
type backend interface {
	compile(source string) ([]byte, error)
	validate(code []byte) error
	extension() string
}

var backends = map[Target]backend{
	TargetSPIRV: spirvBackend{},
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

type spirvBackend struct{}

func (spirvBackend) compile(source string) ([]byte, error) {
	return naga.Compile(source)
}

func (spirvBackend) validate(code []byte) error {
	// Header is five words: magic, version, generator, bound, schema.
	if len(code) < 20 || len(code)%4 != 0 {
		return fmt.Errorf("SPIR-V module has invalid length %d", len(code))
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		return errors.New("SPIR-V module has bad magic number")
	}
	return nil
}

func (spirvBackend) extension() string { return ".spv" }

var entryPointRE = map[Stage]*regexp.Regexp{
	StageVertex:   regexp.MustCompile(`@vertex\b`),
	StageFragment: regexp.MustCompile(`@fragment\b`),
	StageCompute:  regexp.MustCompile(`@compute\b`),
}

// Compiler turns WGSL sources into bytecode for one target.
// A Compiler holds no mutable state and is safe for concurrent use.
type Compiler struct {
	target  Target
	backend backend
}

// NewCompiler returns a compiler for target.
func NewCompiler(target Target) (*Compiler, error) {
	b, ok := backends[target]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTarget, target)
	}
	return &Compiler{target: target, backend: b}, nil
}

// Target returns the compiler's bytecode format.
func (c *Compiler) Target() Target { return c.target }

// Compile compiles source for stage. id only labels diagnostics.
// Every failure is a *CompileError.
func (c *Compiler) Compile(id, source string, stage Stage) ([]byte, error) {
	re, ok := entryPointRE[stage]
	if !ok {
		return nil, &CompileError{ID: id, Stage: stage, Diagnostic: "unknown stage"}
	}
	if !re.MatchString(source) {
		return nil, &CompileError{
			ID:         id,
			Stage:      stage,
			Diagnostic: "no " + stages[stage].attribute + " entry point",
		}
	}

	code, err := c.backend.compile(source)
	if err != nil {
		line, col := parseLocation(err.Error())
		return nil, &CompileError{
			ID:         id,
			Stage:      stage,
			Line:       line,
			Column:     col,
			Diagnostic: err.Error(),
			Err:        err,
		}
	}
	if err := c.backend.validate(code); err != nil {
		return nil, &CompileError{ID: id, Stage: stage, Diagnostic: err.Error(), Err: err}
	}
	return code, nil
}

// Words converts little-endian SPIR-V bytes to 32-bit words, the form GPU
// APIs take for shader module creation.
func Words(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}

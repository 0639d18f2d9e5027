package shader

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Sentinel errors for shader package.
var (
	// ErrShaderCompile is matched by every *CompileError.
	ErrShaderCompile = errors.New("shader: compile error")

	// ErrUnsupportedTarget is returned for a Target without a backend.
	ErrUnsupportedTarget = errors.New("shader: unsupported target")
)

// CompileError carries the compiler diagnostic for one source.
// Line and Column are 1-based and zero when the compiler gave no location.
type CompileError struct {
	ID         string
	Stage      Stage
	Line       int
	Column     int
	Diagnostic string
	Err        error
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("shader: %s (%s) %d:%d: %s", e.ID, e.Stage, e.Line, e.Column, e.Diagnostic)
	}
	return fmt.Sprintf("shader: %s (%s): %s", e.ID, e.Stage, e.Diagnostic)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is reports whether target is ErrShaderCompile.
func (e *CompileError) Is(target error) bool { return target == ErrShaderCompile }

var locationRE = regexp.MustCompile(`(\d+):(\d+)`)

// parseLocation extracts the first "line:column" pair from a diagnostic.
func parseLocation(diag string) (line, col int) {
	m := locationRE.FindStringSubmatch(diag)
	if m == nil {
		return 0, 0
	}
	line, _ = strconv.Atoi(m[1])
	col, _ = strconv.Atoi(m[2])
	return line, col
}

// Package shader compiles WGSL shader sources into portable bytecode.
//
// Compilation is delegated to [github.com/gogpu/naga]; this package only
// selects the stage and target, checks the result, and turns compiler
// failures into *CompileError values.
//
// Stages are chosen by file extension:
//
//	sprite.vert.wgsl  -> StageVertex
//	sprite.frag.wgsl  -> StageFragment
//	blur.comp.wgsl    -> StageCompute
//
// Example:
//
//	c, err := shader.NewCompiler(shader.TargetSPIRV)
//	if err != nil {
//	    return err
//	}
//	spirv, err := c.Compile("sprite.frag.wgsl", src, shader.StageFragment)
package shader

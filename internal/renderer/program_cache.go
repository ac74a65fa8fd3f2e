package renderer

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const shaderVersion = "#version 330 core\n"

// CacheStats are counters for debugging and profiling.
type CacheStats struct {
	Programs int
	Hits     int
	Compiles int
	Failures int
}

// ProgramCache compiles at most one program per distinct source text.
//
// The cache owns one reference to every program it returns. Callers that keep
// a program beyond Teardown call Retain and later Release.
type ProgramCache struct {
	ctx      *Context
	programs map[string]*Program
	failures map[string]error
	stats    CacheStats
}

func newProgramCache(ctx *Context) *ProgramCache {
	return &ProgramCache{
		ctx:      ctx,
		programs: make(map[string]*Program),
		failures: make(map[string]error),
	}
}

func sourceKey(vertex, fragment string) string {
	return vertex + "\x00" + fragment
}

// GetOrCompile returns the program for the exact vertex and fragment text,
// compiling it on first request. A failed text keeps failing with the same
// error without recompiling; other texts are unaffected.
func (pc *ProgramCache) GetOrCompile(vertex, fragment string) (*Program, error) {
	return pc.GetOrCompileKeyed(sourceKey(vertex, fragment), func() (string, string, error) {
		return vertex, fragment, nil
	})
}

// GetOrCompileKeyed is GetOrCompile for callers that can name a permutation
// without assembling its text. build runs only on a cache miss. The key must
// determine the text exactly.
func (pc *ProgramCache) GetOrCompileKeyed(key string, build func() (string, string, error)) (*Program, error) {
	if program, exists := pc.programs[key]; exists {
		pc.stats.Hits++
		logger.Log.Debug("Program cache hit", zap.Uint32("program", program.ID()))
		return program, nil
	}
	if err, failed := pc.failures[key]; failed {
		return nil, err
	}

	vertex, fragment, err := build()
	if err != nil {
		return nil, err
	}
	program, err := compileProgram(pc.ctx, vertex, fragment)
	if err != nil {
		pc.stats.Failures++
		pc.failures[key] = err
		logger.Log.Error("Program compilation failed", zap.Error(err))
		return nil, err
	}
	pc.stats.Compiles++
	pc.programs[key] = program
	logger.Log.Info("Program compiled",
		zap.Uint32("program", program.ID()),
		zap.Int("cached", len(pc.programs)))
	return program, nil
}

// Len returns the number of cached programs.
func (pc *ProgramCache) Len() int { return len(pc.programs) }

// Stats returns the cache counters.
func (pc *ProgramCache) Stats() CacheStats {
	stats := pc.stats
	stats.Programs = len(pc.programs)
	return stats
}

// LogStats logs the cache counters.
func (pc *ProgramCache) LogStats() {
	stats := pc.Stats()
	logger.Log.Info("Program cache stats",
		zap.Int("programs", stats.Programs),
		zap.Int("hits", stats.Hits),
		zap.Int("compiles", stats.Compiles),
		zap.Int("failures", stats.Failures))
}

// Teardown drops the cache's reference to every program and forgets failures.
func (pc *ProgramCache) Teardown() {
	for _, program := range pc.programs {
		program.Release()
	}
	pc.programs = make(map[string]*Program)
	pc.failures = make(map[string]error)
	logger.Log.Info("Program cache cleared")
}

func withVersion(source string) string {
	if strings.HasPrefix(source, "#version") {
		return source
	}
	return shaderVersion + source
}

func compileShader(api gpu.Context, stage gpu.Enum, source string) (*gpu.Handle, error) {
	id, err := api.CreateShader(stage)
	if err != nil {
		return nil, err
	}
	shader := gpu.NewHandle(api, gpu.KindShader, id)
	api.ShaderSource(id, withVersion(source))
	api.CompileShader(id)
	if !api.ShaderCompiled(id) {
		name := "vertex"
		if stage == gpu.FragmentShader {
			name = "fragment"
		}
		log := api.ShaderInfoLog(id)
		shader.Release()
		return nil, &gpu.ShaderCompileError{Stage: name, Log: log}
	}
	return shader, nil
}

func compileProgram(ctx *Context, vertex, fragment string) (*Program, error) {
	api := ctx.api
	vs, err := compileShader(api, gpu.VertexShader, vertex)
	if err != nil {
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	defer vs.Release()
	fs, err := compileShader(api, gpu.FragmentShader, fragment)
	if err != nil {
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	defer fs.Release()

	id, err := api.CreateProgram()
	if err != nil {
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	handle := gpu.NewHandle(api, gpu.KindProgram, id)
	api.AttachShader(id, vs.ID())
	api.AttachShader(id, fs.ID())
	api.LinkProgram(id)
	api.DetachShader(id, vs.ID())
	api.DetachShader(id, fs.ID())
	if !api.ProgramLinked(id) {
		log := api.ProgramInfoLog(id)
		handle.Release()
		return nil, fmt.Errorf("compiling program: %w", &gpu.ShaderCompileError{Stage: "link", Log: log})
	}
	return newProgram(ctx, handle, vertex, fragment), nil
}

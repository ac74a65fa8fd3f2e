package renderer

import (
	"Prism3D/internal/gpu"
	"errors"
	"strings"
	"testing"
)

const testVertexSource = `in vec3 position;
void main() { gl_Position = vec4(position, 1.0); }
`

const testFragmentSource = `layout (location = 0) out vec4 outColor;
void main() { outColor = vec4(1.0); }
`

func TestProgramCacheReturnsSameProgram(t *testing.T) {
	ctx, fake := newTestContext(t)
	cache := ctx.Programs()

	first, err := cache.GetOrCompile(testVertexSource, testFragmentSource)
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	second, err := cache.GetOrCompile(testVertexSource, testFragmentSource)
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	if first != second {
		t.Error("Identical sources should return the same program")
	}
	if fake.LinkCount != 1 {
		t.Errorf("Expected one link, got %d", fake.LinkCount)
	}
	stats := cache.Stats()
	if stats.Programs != 1 || stats.Hits != 1 || stats.Compiles != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if fake.LiveCount(gpu.KindShader) != 0 {
		t.Error("Shader objects should be deleted after linking")
	}
}

func TestProgramCacheDistinctSources(t *testing.T) {
	ctx, _ := newTestContext(t)
	cache := ctx.Programs()

	a, err := cache.GetOrCompile(testVertexSource, testFragmentSource)
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	b, err := cache.GetOrCompile(testVertexSource, testFragmentSource+"// variant\n")
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	if a.ID() == b.ID() {
		t.Error("Different sources should give different programs")
	}
	if cache.Len() != 2 {
		t.Errorf("Expected 2 cached programs, got %d", cache.Len())
	}
	if !strings.HasPrefix(b.FragmentSource(), "layout") {
		t.Error("Program should keep the source it was requested with")
	}
}

func TestProgramCacheFailureIsolation(t *testing.T) {
	ctx, fake := newTestContext(t)
	fake.CompileFails = func(source string) string {
		if strings.Contains(source, "broken") {
			return "0:1: syntax error"
		}
		return ""
	}
	cache := ctx.Programs()
	broken := testFragmentSource + "broken\n"

	_, err := cache.GetOrCompile(testVertexSource, broken)
	var compileErr *gpu.ShaderCompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("Expected ShaderCompileError, got %v", err)
	}
	if compileErr.Stage != "fragment" || !strings.Contains(compileErr.Log, "syntax error") {
		t.Errorf("Unexpected compile error %+v", compileErr)
	}
	if !errors.Is(err, gpu.ErrShaderCompile) {
		t.Error("Compile errors should match ErrShaderCompile")
	}

	compiles := fake.CompileCount
	_, again := cache.GetOrCompile(testVertexSource, broken)
	if again == nil || again.Error() != err.Error() {
		t.Errorf("Expected the same error again, got %v", again)
	}
	if fake.CompileCount != compiles {
		t.Error("A failed source should not be recompiled")
	}

	if _, err := cache.GetOrCompile(testVertexSource, testFragmentSource); err != nil {
		t.Errorf("Other sources should still compile: %v", err)
	}
	if cache.Stats().Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", cache.Stats().Failures)
	}
}

func TestProgramCacheLinkFailure(t *testing.T) {
	ctx, fake := newTestContext(t)
	fake.LinkFails = func(vertex, fragment string) string { return "link error" }

	_, err := ctx.Programs().GetOrCompile(testVertexSource, testFragmentSource)
	var compileErr *gpu.ShaderCompileError
	if !errors.As(err, &compileErr) || compileErr.Stage != "link" {
		t.Fatalf("Expected a link error, got %v", err)
	}
	if fake.LiveCount(gpu.KindProgram) != 0 {
		t.Error("Failed program should be deleted")
	}
}

func TestProgramCacheKeyedBuildsOnce(t *testing.T) {
	ctx, _ := newTestContext(t)
	builds := 0
	build := func() (string, string, error) {
		builds++
		return testVertexSource, testFragmentSource, nil
	}
	for i := 0; i < 3; i++ {
		if _, err := ctx.Programs().GetOrCompileKeyed("color", build); err != nil {
			t.Fatalf("GetOrCompileKeyed failed: %v", err)
		}
	}
	if builds != 1 {
		t.Errorf("Expected build to run once, ran %d times", builds)
	}
}

func TestProgramCacheTeardown(t *testing.T) {
	ctx, fake := newTestContext(t)
	program, err := ctx.Programs().GetOrCompile(testVertexSource, testFragmentSource)
	if err != nil {
		t.Fatalf("GetOrCompile failed: %v", err)
	}
	program.Retain()

	ctx.Programs().Teardown()
	if !fake.IsLive(gpu.KindProgram, program.ID()) {
		t.Error("A retained program should survive teardown")
	}
	id := program.ID()
	program.Release()
	if fake.IsLive(gpu.KindProgram, id) {
		t.Error("Program should be deleted by its last release")
	}
	if ctx.Programs().Len() != 0 {
		t.Error("Teardown should empty the cache")
	}
}

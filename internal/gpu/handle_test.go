package gpu_test

import (
	"Prism3D/internal/gpu"
	"Prism3D/internal/gpu/gputest"
	"Prism3D/internal/logger"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleReleasedExactlyOnce(t *testing.T) {
	fake := gputest.New(4, 4)
	id, err := fake.CreateTexture()
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	h := gpu.NewHandle(fake, gpu.KindTexture, id)
	h.Retain()

	if h.Release() {
		t.Error("First release of two owners should not destroy")
	}
	if !fake.IsLive(gpu.KindTexture, id) || h.ID() != id {
		t.Error("Texture should live while an owner remains")
	}
	if !h.Release() {
		t.Error("Last release should destroy")
	}
	if fake.IsLive(gpu.KindTexture, id) {
		t.Error("Texture should be deleted")
	}
	if h.Release() {
		t.Error("Releasing a destroyed handle should be a no-op")
	}
	if h.ID() != 0 || h.Live() {
		t.Error("Destroyed handle should report id 0")
	}
	if fake.DoubleDeletes != 0 {
		t.Errorf("Expected no double deletes, got %d", fake.DoubleDeletes)
	}
}

func TestHandleDoubleReleaseWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })

	fake := gputest.New(4, 4)
	id, _ := fake.CreateBuffer()
	h := gpu.NewHandle(fake, gpu.KindBuffer, id)
	h.Release()
	if logs.Len() != 0 {
		t.Fatalf("First release should not warn, got %d entries", logs.Len())
	}
	h.Release()

	warnings := logs.FilterMessage("Release of destroyed GPU object").All()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if kind := warnings[0].ContextMap()["kind"]; kind != "buffer" {
		t.Errorf("Warning kind = %v, want buffer", kind)
	}
	if fake.DoubleDeletes != 0 {
		t.Errorf("Expected no double deletes, got %d", fake.DoubleDeletes)
	}
}

func TestHandleRetainAfterReleasePanics(t *testing.T) {
	fake := gputest.New(4, 4)
	id, _ := fake.CreateBuffer()
	h := gpu.NewHandle(fake, gpu.KindBuffer, id)
	h.Release()

	defer func() {
		if recover() == nil {
			t.Error("Retain on a released handle should panic")
		}
	}()
	h.Retain()
}

func TestHandleNil(t *testing.T) {
	var h *gpu.Handle
	if h.ID() != 0 || h.Live() || h.Release() {
		t.Error("Nil handle should be inert")
	}
}

func TestCreationFailure(t *testing.T) {
	fake := gputest.New(4, 4)
	fake.FailCreate[gpu.KindFramebuffer] = true
	if _, err := fake.CreateFramebuffer(); !errors.Is(err, gpu.ErrResourceCreation) {
		t.Errorf("Expected ErrResourceCreation, got %v", err)
	}
}

func TestFramebufferStatusString(t *testing.T) {
	if s := gpu.FramebufferStatusString(gpu.FramebufferIncompleteAttachment); s == "" {
		t.Error("Expected a diagnostic for an incomplete attachment")
	}
}

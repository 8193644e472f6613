package document

import (
	"context"
	"testing"
)

// fakeHandle is a minimal localfile.Handle for binding tests.
type fakeHandle struct {
	name     string
	writable bool
}

func (h *fakeHandle) Name() string                                 { return h.name }
func (h *fakeHandle) Writable() bool                               { return h.writable }
func (h *fakeHandle) Read(ctx context.Context) ([]byte, error)     { return nil, nil }
func (h *fakeHandle) Write(ctx context.Context, data []byte) error { return nil }

func TestBindCloudClearsLocal(t *testing.T) {
	i := NewIdentity()
	i.BindLocal(&fakeHandle{name: "a.litl", writable: true}, "a.litl")
	i.BindCloud("file-id-12345", "cloud.litl")

	if i.Backend() != BackendCloud {
		t.Errorf("Backend = %v", i.Backend())
	}
	if i.Handle() != nil {
		t.Errorf("local handle survived a cloud bind")
	}
	if i.CloudID() != "file-id-12345" || i.DisplayName() != "cloud.litl" {
		t.Errorf("cloudID=%q name=%q", i.CloudID(), i.DisplayName())
	}
}

func TestBindLocalClearsCloud(t *testing.T) {
	i := NewIdentity()
	i.BindCloud("file-id-12345", "cloud.litl")
	h := &fakeHandle{name: "a.litl", writable: true}
	i.BindLocal(h, "a.litl")

	if i.Backend() != BackendLocal {
		t.Errorf("Backend = %v", i.Backend())
	}
	if i.CloudID() != "" {
		t.Errorf("cloud ID survived a local bind")
	}
	if i.Handle() != h {
		t.Errorf("handle not stored")
	}
}

func TestResetUnbinds(t *testing.T) {
	i := NewIdentity()
	i.BindCloud("file-id-12345", "cloud.litl")
	i.Reset()

	if i.Backend() != BackendNone || i.CloudID() != "" || i.DisplayName() != "" {
		t.Errorf("not fully reset: backend=%v cloudID=%q name=%q", i.Backend(), i.CloudID(), i.DisplayName())
	}
}

func TestCanSave(t *testing.T) {
	tests := []struct {
		name string
		prep func(i *Identity)
		want bool
	}{
		{"unbound", func(i *Identity) {}, false},
		{"cloud", func(i *Identity) { i.BindCloud("file-id-12345", "c") }, true},
		{"writable local", func(i *Identity) { i.BindLocal(&fakeHandle{writable: true}, "a") }, true},
		{"one-shot local", func(i *Identity) { i.BindLocal(&fakeHandle{writable: false}, "a") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := NewIdentity()
			tt.prep(i)
			if got := i.CanSave(); got != tt.want {
				t.Errorf("CanSave() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBeginSaveIsExclusive(t *testing.T) {
	i := NewIdentity()
	if !i.BeginSave() {
		t.Fatal("first BeginSave rejected")
	}
	if i.BeginSave() {
		t.Fatal("second BeginSave accepted while saving")
	}
	if !i.Saving() {
		t.Error("Saving() = false during save")
	}

	i.EndSave()
	if i.Saving() {
		t.Error("Saving() = true after EndSave")
	}
	if !i.BeginSave() {
		t.Error("BeginSave rejected after EndSave")
	}
}

func TestBackendString(t *testing.T) {
	if BackendNone.String() != "none" || BackendLocal.String() != "local" || BackendCloud.String() != "cloud" {
		t.Errorf("unexpected Backend strings: %s/%s/%s", BackendNone, BackendLocal, BackendCloud)
	}
}

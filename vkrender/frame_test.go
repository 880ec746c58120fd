package vkrender

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/volumetric/render"
)

func TestFindMemoryType(t *testing.T) {
	types := []core1_0.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
	}
	hostCoherent := core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent

	tests := []struct {
		name   string
		filter uint32
		props  core1_0.MemoryPropertyFlags
		want   int
		ok     bool
	}{
		{"device local", 0b111, core1_0.MemoryPropertyDeviceLocal, 0, true},
		{"host coherent", 0b111, hostCoherent, 2, true},
		{"first host visible", 0b111, core1_0.MemoryPropertyHostVisible, 1, true},
		{"filter excludes match", 0b011, hostCoherent, 0, false},
		{"empty filter", 0, core1_0.MemoryPropertyDeviceLocal, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findMemoryType(types, tt.filter, tt.props)
			if (err == nil) != tt.ok {
				t.Fatalf("findMemoryType() error = %v, want ok %v", err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("findMemoryType() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPresentWithoutFrame(t *testing.T) {
	r := &Renderer{}
	if err := r.Present(); err == nil {
		t.Error("Present() = nil error, want error")
	}
}

func TestExecuteWhileFrameInFlight(t *testing.T) {
	r := &Renderer{}
	r.frame.acquired = true
	err := r.Execute([]render.Command{{Op: render.OpClear}})
	if !errors.Is(err, errFrameInFlight) {
		t.Errorf("Execute() = %v, want %v", err, errFrameInFlight)
	}
}

func TestCleanupWithoutFrame(t *testing.T) {
	r := &Renderer{}
	if err := r.Cleanup(); err != nil {
		t.Errorf("Cleanup() = %v, want nil", err)
	}
}

func TestNewRejectsInvalidPipeline(t *testing.T) {
	desc := render.QuadPipeline(nil, nil)
	if _, err := New(nil, desc, nil, Config{}); err == nil {
		t.Error("New() = nil error, want error")
	}
}

package render

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vkngwrapper/volumetric/scene"
)

func TestEncoderRecordsInProgramOrder(t *testing.T) {
	var enc Encoder
	enc.Draw(Slice{First: 3, Count: 3})
	enc.Clear(mgl32.Vec4{1, 0, 0, 1})
	enc.UpdateTransform(scene.IdentityTransform())
	enc.Draw(Slice{First: 0, Count: 3})

	if enc.Pending() != 4 {
		t.Fatalf("Pending() = %d, want 4", enc.Pending())
	}

	dev := &fakeDevice{}
	if err := enc.Flush(dev); err != nil {
		t.Fatalf("Flush() = %v", err)
	}

	got := dev.frames[0]
	wantOps := []Op{OpDraw, OpClear, OpUpdateTransform, OpDraw}
	for i, op := range wantOps {
		if got[i].Op != op {
			t.Errorf("command %d op = %s, want %s", i, got[i].Op, op)
		}
	}
	if got[0].Slice != (Slice{First: 3, Count: 3}) {
		t.Errorf("first draw slice = %+v", got[0].Slice)
	}
	if got[1].Color != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("clear color = %v", got[1].Color)
	}
	if got[2].Transform != scene.IdentityTransform() {
		t.Errorf("transform = %v", got[2].Transform.Matrix)
	}
}

func TestEncoderFlushResets(t *testing.T) {
	var enc Encoder
	dev := &fakeDevice{executeErr: errors.New("queue full")}

	enc.Clear(scene.ClearColor)
	if err := enc.Flush(dev); err == nil {
		t.Fatal("Flush() = nil, want device error")
	}
	if enc.Pending() != 0 {
		t.Errorf("Pending() after failed flush = %d, want 0", enc.Pending())
	}

	dev.executeErr = nil
	enc.Draw(Slice{Count: 6})
	if err := enc.Flush(dev); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if len(dev.frames[1]) != 1 {
		t.Errorf("second flush submitted %d commands, want 1", len(dev.frames[1]))
	}
	if len(dev.frames[0]) != 1 || dev.frames[0][0].Op != OpClear {
		t.Errorf("first flush commands changed after second flush: %+v", dev.frames[0])
	}
}

func TestEncoderFlushEmpty(t *testing.T) {
	var enc Encoder
	dev := &fakeDevice{}
	if err := enc.Flush(dev); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if len(dev.frames) != 1 || len(dev.frames[0]) != 0 {
		t.Errorf("empty flush executed %v", dev.frames)
	}
}

func TestOpString(t *testing.T) {
	tests := map[Op]string{
		OpClear:           "clear",
		OpUpdateTransform: "update-transform",
		OpDraw:            "draw",
		Op(0):             "unknown",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", int(op), got, want)
		}
	}
}

func TestEventStops(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{Event{Kind: EventClose}, true},
		{Event{Kind: EventKeyPress, Key: KeyEscape}, true},
		{Event{Kind: EventKeyPress, Key: KeyUnknown}, false},
		{Event{Kind: EventClose, Key: KeyEscape}, true},
		{Event{}, false},
	}
	for _, tt := range tests {
		if got := tt.event.stops(); got != tt.want {
			t.Errorf("%+v.stops() = %v, want %v", tt.event, got, tt.want)
		}
	}
}

package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Event
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Type: EventQuit}, true},
		{"resize", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 1024, Data2: 768},
			Event{Type: EventWindowResize, Width: 1024, Height: 768}, true},
		{"leave", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_LEAVE}, Event{Type: EventWindowLeave}, true},
		{"focus ignored", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED}, Event{}, false},
		{"key down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_ESCAPE}, true},
		{"motion", &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20, XRel: -3, YRel: 4},
			Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, DeltaX: -3, DeltaY: 4}, true},
		{"button down", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 5, Y: 6},
			Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT, MouseX: 5, MouseY: 6}, true},
		{"button up", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT},
			Event{Type: EventMouseUp, Button: sdl.BUTTON_LEFT}, true},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2}, Event{Type: EventMouseWheel, Wheel: 2}, true},
		{"flipped wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2, Direction: sdl.MOUSEWHEEL_FLIPPED},
			Event{Type: EventMouseWheel, Wheel: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.event)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestIsKeyPressed(t *testing.T) {
	i := New()
	i.events = append(i.events, Event{Type: EventKeyDown, Key: sdl.SCANCODE_ESCAPE})

	if !i.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		t.Error("expected escape to be pressed")
	}
	if i.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("space was not pressed")
	}
}

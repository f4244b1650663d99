// Package loop implements the viewer's single UI thread: a queue of posted
// tasks and a set of per-frame callbacks, both run from Tick.
//
// Post is safe to call from any goroutine. Everything else, including the
// tasks and frame callbacks themselves, runs on the goroutine calling Tick.
package loop

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/logger"
)

// Task is a unit of work posted to the loop.
type Task func()

// FrameFunc runs once per frame with the seconds elapsed since the previous frame.
type FrameFunc func(dt float64)

// Loop dispatches posted tasks and frame callbacks.
type Loop struct {
	mu      sync.Mutex
	pending []Task

	frames []*frameEntry
}

type frameEntry struct {
	fn FrameFunc
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{}
}

// Post queues fn to run on the loop thread during the next Tick.
func (l *Loop) Post(fn Task) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
}

// OnFrame registers fn to run every frame and returns a func that
// unregisters it. The cancel func may be called more than once.
// Must be called from the loop thread.
func (l *Loop) OnFrame(fn FrameFunc) (cancel func()) {
	e := &frameEntry{fn: fn}
	l.frames = append(l.frames, e)
	return func() {
		for i, f := range l.frames {
			if f == e {
				l.frames = append(l.frames[:i:i], l.frames[i+1:]...)
				return
			}
		}
	}
}

// Frames returns the number of registered frame callbacks.
func (l *Loop) Frames() int { return len(l.frames) }

// Tick runs every task posted before the call, in order, then every frame
// callback. Tasks posted while draining run on the next Tick.
func (l *Loop) Tick(dt float64) {
	l.mu.Lock()
	tasks := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, t := range tasks {
		t()
	}

	// Callbacks may cancel themselves or others mid-frame.
	frames := append([]*frameEntry(nil), l.frames...)
	for _, f := range frames {
		if l.registered(f) {
			f.fn(dt)
		}
	}
}

func (l *Loop) registered(e *frameEntry) bool {
	for _, f := range l.frames {
		if f == e {
			return true
		}
	}
	return false
}

// Driver supplies the platform side of a frame.
type Driver interface {
	// PollEvents dispatches pending input and returns false once the user asked to quit.
	PollEvents() bool
	// Present shows the frame that was just drawn.
	Present()
}

// Run ticks the loop until ctx is cancelled or the driver reports quit.
func (l *Loop) Run(ctx context.Context, d Driver) error {
	log := logger.Named("loop")
	log.Info("starting frame loop")

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.PollEvents() {
			log.Info("quit requested")
			return nil
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		l.Tick(dt)
		d.Present()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

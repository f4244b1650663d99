// Package viewer hosts interactive asset viewer sessions: it mounts a
// session per asset, drives the asynchronous load and publishes the
// observable loading, error and hovered-component state.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/asset"
	"github.com/Faultbox/stepview/internal/config"
	"github.com/Faultbox/stepview/internal/engine/loop"
	"github.com/Faultbox/stepview/internal/engine/mount"
	"github.com/Faultbox/stepview/internal/engine/scene"
	"github.com/Faultbox/stepview/internal/logger"
	"github.com/Faultbox/stepview/internal/metadata"
)

// progressBuffer is how many progress samples may queue before new ones are dropped.
const progressBuffer = 16

// AssetLoader fetches and decodes an asset by identifier.
type AssetLoader interface {
	Load(ctx context.Context, id string, progress chan<- asset.Progress) (*scene.Graph, error)
}

// Looper is the UI thread the viewer runs on.
type Looper interface {
	FrameScheduler
	Post(fn loop.Task)
}

// State is the viewer's observable output.
type State struct {
	AssetID  string
	Loading  bool
	Error    string // Empty when there is no error
	Hovered  *metadata.ComponentInfo
	Progress float64 // Download fraction in [0, 1], or -1 when unknown
}

// Viewer mounts one session at a time on a target and loads assets into it.
// All methods must be called from the loop thread.
type Viewer struct {
	loop       Looper
	target     mount.Target
	newSurface SurfaceFactory
	loader     AssetLoader
	cfg        config.ViewerConfig

	ctx    context.Context
	cancel context.CancelFunc
	loads  sync.WaitGroup

	session *Session
	gen     uint64

	state     State
	observers map[int]func(State)
	nextObs   int

	log *zap.Logger
}

// New creates a viewer with no session mounted.
func New(l Looper, target mount.Target, newSurface SurfaceFactory, loader AssetLoader, cfg config.ViewerConfig) *Viewer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Viewer{
		loop:       l,
		target:     target,
		newSurface: newSurface,
		loader:     loader,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		observers:  make(map[int]func(State)),
		log:        logger.Named("viewer"),
	}
}

// State returns the current observable state.
func (v *Viewer) State() State { return v.state }

// Session returns the live session, or nil.
func (v *Viewer) Session() *Session { return v.session }

// Subscribe registers fn for state changes and returns its unregister func.
func (v *Viewer) Subscribe(fn func(State)) (cancel func()) {
	id := v.nextObs
	v.nextObs++
	v.observers[id] = fn
	return func() { delete(v.observers, id) }
}

// SetAsset tears down the current session, mounts a fresh one and starts
// loading id into it. meta is the structural metadata for the asset and may
// be nil. A load still in flight for a previous call is left to finish, and
// its result is discarded.
func (v *Viewer) SetAsset(id string, meta *metadata.Tree) error {
	v.teardown()
	v.gen++
	gen := v.gen

	s, err := Mount(gen, v.target, v.newSurface, v.loop, v.cfg, v.setHovered)
	if err != nil {
		v.update(State{AssetID: id, Error: err.Error(), Progress: -1})
		return err
	}
	v.session = s
	v.update(State{AssetID: id, Loading: true, Progress: -1})

	log := v.log.With(zap.String("asset", id), zap.Uint64("session", gen))
	log.Info("loading asset")

	progress := make(chan asset.Progress, progressBuffer)
	v.loads.Add(2)
	go func() {
		defer v.loads.Done()
		for p := range progress {
			v.loop.Post(func() { v.applyProgress(gen, p) })
		}
	}()
	go func() {
		defer v.loads.Done()
		g, err := v.loader.Load(v.ctx, id, progress)
		close(progress)
		v.loop.Post(func() { v.finishLoad(gen, id, meta, g, err) })
	}()
	return nil
}

// current reports whether gen still owns the mounted session.
func (v *Viewer) current(gen uint64) bool {
	return v.session != nil && v.session.Gen() == gen
}

func (v *Viewer) applyProgress(gen uint64, p asset.Progress) {
	if !v.current(gen) || !v.state.Loading {
		return
	}
	st := v.state
	st.Progress = p.Fraction()
	v.update(st)
}

func (v *Viewer) finishLoad(gen uint64, id string, meta *metadata.Tree, g *scene.Graph, err error) {
	log := v.log.With(zap.String("asset", id), zap.Uint64("session", gen))

	if !v.current(gen) {
		if g != nil {
			g.Dispose()
		}
		log.Warn("discarding result of superseded load", zap.Error(err))
		return
	}

	st := v.state
	st.Loading = false
	if err != nil {
		log.Error("asset load failed", zap.Error(err))
		st.Error = errorMessage(err)
		v.update(st)
		return
	}

	v.session.SetModel(g, meta)
	st.Progress = 1
	v.update(st)
}

// errorMessage turns a load failure into the message shown to the user.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, asset.ErrInvalidID):
		return fmt.Sprintf("Invalid model identifier: %v", err)
	case errors.Is(err, asset.ErrTransport):
		return fmt.Sprintf("Could not download the model: %v", err)
	case errors.Is(err, asset.ErrDecode):
		return fmt.Sprintf("The model file could not be read: %v", err)
	default:
		return fmt.Sprintf("Failed to load the model: %v", err)
	}
}

// setHovered publishes the hovered component when it differs from the last one.
func (v *Viewer) setHovered(info *metadata.ComponentInfo) {
	prev := v.state.Hovered
	if prev == nil && info == nil {
		return
	}
	if prev != nil && info != nil && prev.InstanceID == info.InstanceID {
		return
	}
	st := v.state
	st.Hovered = info
	v.update(st)
}

func (v *Viewer) update(st State) {
	v.state = st
	for _, fn := range v.observers {
		fn(st)
	}
}

func (v *Viewer) teardown() {
	if v.session == nil {
		return
	}
	v.session.Teardown()
	v.session = nil
}

// Close tears down the mounted session and abandons any load in flight.
func (v *Viewer) Close() {
	v.teardown()
	v.gen++
	v.cancel()
	if v.state.Hovered != nil || v.state.Loading {
		st := v.state
		st.Hovered = nil
		st.Loading = false
		v.update(st)
	}
}

// Wait blocks until every load goroutine has returned. Results they posted
// still need a loop Tick to be applied.
func (v *Viewer) Wait() { v.loads.Wait() }

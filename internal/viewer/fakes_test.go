package viewer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stepview/internal/asset"
	"github.com/Faultbox/stepview/internal/config"
	"github.com/Faultbox/stepview/internal/engine/camera"
	"github.com/Faultbox/stepview/internal/engine/lighting"
	"github.com/Faultbox/stepview/internal/engine/loop"
	"github.com/Faultbox/stepview/internal/engine/mount"
	"github.com/Faultbox/stepview/internal/engine/picking"
	"github.com/Faultbox/stepview/internal/engine/scene"
)

type fakeSurface struct {
	background    mgl32.Vec4
	width, height int
	renders       int
	lastGraph     *scene.Graph
	disposed      bool
}

func (s *fakeSurface) SetSize(w, h int) { s.width, s.height = w, h }

func (s *fakeSurface) Rect() picking.Rect {
	return picking.Rect{Width: float32(s.width), Height: float32(s.height)}
}

func (s *fakeSurface) Render(g *scene.Graph, _ *camera.Camera, _ lighting.Rig) {
	s.renders++
	s.lastGraph = g
}

func (s *fakeSurface) Dispose() { s.disposed = true }

type fakeTarget struct {
	width, height int
	surfaces      []mount.Surface
	resizers      map[int]func(int, int)
	pointers      map[int]mount.Pointer
	next          int
}

func newFakeTarget(w, h int) *fakeTarget {
	return &fakeTarget{
		width:    w,
		height:   h,
		resizers: map[int]func(int, int){},
		pointers: map[int]mount.Pointer{},
	}
}

func (t *fakeTarget) Size() (int, int)         { return t.width, t.height }
func (t *fakeTarget) Surfaces() []mount.Surface { return append([]mount.Surface(nil), t.surfaces...) }
func (t *fakeTarget) Attach(s mount.Surface)    { t.surfaces = append(t.surfaces, s) }

func (t *fakeTarget) Detach(s mount.Surface) {
	for i, cur := range t.surfaces {
		if cur == s {
			t.surfaces = append(t.surfaces[:i:i], t.surfaces[i+1:]...)
			return
		}
	}
}

func (t *fakeTarget) OnResize(fn func(int, int)) func() {
	id := t.next
	t.next++
	t.resizers[id] = fn
	return func() { delete(t.resizers, id) }
}

func (t *fakeTarget) OnPointer(p mount.Pointer) func() {
	id := t.next
	t.next++
	t.pointers[id] = p
	return func() { delete(t.pointers, id) }
}

func (t *fakeTarget) resize(w, h int) {
	t.width, t.height = w, h
	for _, fn := range t.resizers {
		fn(w, h)
	}
}

func (t *fakeTarget) move(x, y float32) {
	for _, p := range t.pointers {
		p.Move(x, y)
	}
}

func (t *fakeTarget) leave() {
	for _, p := range t.pointers {
		p.Leave()
	}
}

type loadResult struct {
	graph *scene.Graph
	err   error
}

// fakeLoader blocks each Load until the test resolves that identifier.
type fakeLoader struct {
	mu       sync.Mutex
	pending  map[string]chan loadResult
	progress map[string][]asset.Progress
	started  []string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{pending: map[string]chan loadResult{}, progress: map[string][]asset.Progress{}}
}

func (l *fakeLoader) channel(id string) chan loadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.pending[id]
	if !ok {
		ch = make(chan loadResult, 1)
		l.pending[id] = ch
	}
	return ch
}

func (l *fakeLoader) Load(ctx context.Context, id string, progress chan<- asset.Progress) (*scene.Graph, error) {
	l.mu.Lock()
	l.started = append(l.started, id)
	samples := l.progress[id]
	l.mu.Unlock()

	for _, p := range samples {
		select {
		case progress <- p:
		default:
		}
	}

	select {
	case res := <-l.channel(id):
		return res.graph, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *fakeLoader) resolve(id string, g *scene.Graph, err error) {
	l.channel(id) <- loadResult{graph: g, err: err}
}

type fixture struct {
	loop     *loop.Loop
	target   *fakeTarget
	loader   *fakeLoader
	surfaces []*fakeSurface
	viewer   *Viewer
	states   []State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loop:   loop.New(),
		target: newFakeTarget(800, 600),
		loader: newFakeLoader(),
	}
	factory := func(bg mgl32.Vec4) (mount.Surface, error) {
		s := &fakeSurface{background: bg}
		f.surfaces = append(f.surfaces, s)
		return s, nil
	}
	f.viewer = New(f.loop, f.target, factory, f.loader, config.Default().Viewer)
	f.viewer.Subscribe(func(s State) { f.states = append(f.states, s) })
	t.Cleanup(func() {
		f.viewer.Close()
		f.viewer.Wait()
	})
	return f
}

// tickUntil ticks the loop until cond holds or a second passes.
func (f *fixture) tickUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		f.loop.Tick(0.016)
		time.Sleep(time.Millisecond)
	}
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	f.tickUntil(t, func() bool { return !f.viewer.State().Loading })
}

// cubeAsset returns a decoded-asset graph with one unit-cube mesh named name
// offset by (10, 0, 0) and scaled by 4, so normalization has work to do.
func cubeAsset(name string) *scene.Graph {
	p := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	idx := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		3, 7, 6, 3, 6, 2, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	g := scene.NewGraph(asset.RootName)
	g.AddMesh(g.Root(), name, mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(4, 4, 4)), &scene.Mesh{
		Geometry:  scene.NewGeometry(p, idx),
		Materials: []*scene.Material{scene.NewMaterial(name+"-paint", mgl32.Vec4{0.7, 0.7, 0.7, 1})},
	})
	return g
}

// meshNames lists the names of every mesh reachable in g.
func meshNames(g *scene.Graph) []string {
	var names []string
	for _, id := range g.Meshes(g.Root()) {
		names = append(names, g.Node(id).Name)
	}
	return names
}

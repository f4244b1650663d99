package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/config"
	"github.com/Faultbox/stepview/internal/engine/camera"
	"github.com/Faultbox/stepview/internal/engine/lighting"
	"github.com/Faultbox/stepview/internal/engine/loop"
	"github.com/Faultbox/stepview/internal/engine/mount"
	"github.com/Faultbox/stepview/internal/engine/picking"
	"github.com/Faultbox/stepview/internal/engine/scene"
	"github.com/Faultbox/stepview/internal/logger"
	"github.com/Faultbox/stepview/internal/metadata"
)

// SurfaceFactory creates a render surface cleared to background.
type SurfaceFactory func(background mgl32.Vec4) (mount.Surface, error)

// FrameScheduler runs callbacks once per display refresh.
type FrameScheduler interface {
	OnFrame(fn loop.FrameFunc) (cancel func())
}

// Session owns everything one mounted viewer draws with: surface, camera,
// controls, scene and highlight state. A session is used from the loop
// thread only.
type Session struct {
	gen    uint64
	cfg    config.ViewerConfig
	target mount.Target

	surface  mount.Surface
	cam      *camera.Camera
	controls *camera.OrbitControls
	rig      lighting.Rig
	graph    *scene.Graph
	grid     scene.NodeID
	model    scene.NodeID
	picker   *picking.Picker

	cancels []func()
	closed  bool
	log     *zap.Logger
}

// Mount creates a session on target. Surfaces already attached to target are
// detached first, so at most one surface is ever attached.
func Mount(gen uint64, target mount.Target, newSurface SurfaceFactory, frames FrameScheduler, cfg config.ViewerConfig, onHover picking.HoverFunc) (*Session, error) {
	log := logger.Named("session").With(zap.Uint64("session", gen))

	for _, stale := range target.Surfaces() {
		log.Warn("removing leftover surface from mount target")
		target.Detach(stale)
	}

	surface, err := newSurface(mgl32.Vec4(cfg.Background))
	if err != nil {
		return nil, fmt.Errorf("creating render surface: %w", err)
	}
	target.Attach(surface)

	s := &Session{
		gen:     gen,
		cfg:     cfg,
		target:  target,
		surface: surface,
		rig:     lighting.DefaultRig(cfg.AmbientLight, cfg.DirectionalSun),
		graph:   scene.NewGraph("scene"),
		model:   scene.NoNode,
		log:     log,
	}

	s.cam = camera.NewPerspective(cfg.FOV, 1, cfg.Near, cfg.Far)
	s.controls = camera.NewOrbitControls(s.cam, cfg.Damping)
	s.controls.Reset(s.DefaultEye(), mgl32.Vec3{})

	s.grid = s.graph.AddGrid(s.graph.Root(), "grid", scene.NewGrid(cfg.GridSize, cfg.GridDivisions))

	highlight := scene.NewMaterial("highlight", mgl32.Vec4(cfg.HighlightColor))
	highlight.Emissive = mgl32.Vec3{cfg.HighlightColor[0], cfg.HighlightColor[1], cfg.HighlightColor[2]}.Mul(0.3)
	s.picker = picking.NewPicker(s.graph, s.cam, highlight, onHover)

	s.resize(target.Size())
	s.cancels = append(s.cancels,
		target.OnResize(s.resize),
		target.OnPointer(mount.Pointer{
			Move:  s.pointerMove,
			Leave: s.picker.PointerLeave,
			Drag:  s.controls.HandleDrag,
			Wheel: s.controls.HandleZoom,
		}),
		frames.OnFrame(s.frame),
	)

	log.Info("session mounted")
	return s, nil
}

// Gen returns the session's generation, its liveness token.
func (s *Session) Gen() uint64 { return s.gen }

// Camera returns the session camera.
func (s *Session) Camera() *camera.Camera { return s.cam }

// Controls returns the orbit controls driving the camera.
func (s *Session) Controls() *camera.OrbitControls { return s.controls }

// Graph returns the session scene graph.
func (s *Session) Graph() *scene.Graph { return s.graph }

// Model returns the root of the attached model, or NoNode.
func (s *Session) Model() scene.NodeID { return s.model }

// Picker returns the session picker.
func (s *Session) Picker() *picking.Picker { return s.picker }

// Surface returns the session's render surface.
func (s *Session) Surface() mount.Surface { return s.surface }

// Closed reports whether Teardown has run.
func (s *Session) Closed() bool { return s.closed }

// DefaultEye returns the configured camera start position.
func (s *Session) DefaultEye() mgl32.Vec3 { return mgl32.Vec3(s.cfg.CameraPosition) }

// SetModel attaches a decoded asset, normalizes it into view, resets the
// camera and rebuilds the component table from meta. meta may be nil.
func (s *Session) SetModel(asset *scene.Graph, meta *metadata.Tree) scene.Fit {
	s.clearModel()

	s.model = s.graph.Graft(s.graph.Root(), asset)
	fit := s.graph.Normalize(s.model, s.cfg.TargetSize)
	if fit.Degenerate {
		s.log.Warn("degenerate asset bounds, skipping scale", zap.Stringer("size", vec(fit.Box.Size())))
	}
	s.controls.Reset(s.DefaultEye(), mgl32.Vec3{})

	components := metadata.Correlate(s.graph, s.model, metadata.BuildIndex(meta))
	s.picker.SetComponents(components)

	s.log.Info("model attached",
		zap.Float32("scale", fit.Scale),
		zap.Int("components", len(components)))
	return fit
}

func (s *Session) clearModel() {
	s.picker.Reset()
	if s.model == scene.NoNode {
		return
	}
	for _, id := range s.graph.Meshes(s.model) {
		for _, m := range s.graph.Node(id).Mesh.Materials {
			m.Dispose()
		}
	}
	s.graph.Detach(s.model)
	s.model = scene.NoNode
}

func (s *Session) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.cam.SetViewport(width, height)
	s.surface.SetSize(width, height)
}

func (s *Session) pointerMove(clientX, clientY float32) {
	s.picker.PointerMove(clientX, clientY, s.surface.Rect())
}

func (s *Session) frame(float64) {
	s.controls.Update()
	s.surface.Render(s.graph, s.cam, s.rig)
}

// Teardown unregisters every callback, reverts any highlight, releases the
// surface and detaches it from the mount target. Calling it again is a no-op.
func (s *Session) Teardown() {
	if s.closed {
		return
	}
	s.closed = true

	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil

	s.picker.Reset()
	s.graph.Dispose()
	s.surface.Dispose()
	s.target.Detach(s.surface)

	s.log.Info("session torn down")
}

// vec formats a vector for logging.
type vec mgl32.Vec3

func (v vec) String() string { return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2]) }

// Package renderer provides the OpenGL render surface the viewer draws into.
package renderer

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stepview/internal/engine/camera"
	"github.com/Faultbox/stepview/internal/engine/lighting"
	"github.com/Faultbox/stepview/internal/engine/mount"
	"github.com/Faultbox/stepview/internal/engine/picking"
	"github.com/Faultbox/stepview/internal/engine/scene"
	"github.com/Faultbox/stepview/internal/engine/screenshot"
	"github.com/Faultbox/stepview/internal/engine/shader"
	"github.com/Faultbox/stepview/internal/logger"
)

var glInit = sync.OnceValue(gl.Init)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background mgl32.Vec4
}

// Renderer is a GL render surface. It uploads geometry on first draw and
// owns every GL object it creates until Dispose.
type Renderer struct {
	config Config

	meshProgram *shader.Program
	lineProgram *shader.Program

	meshes map[*scene.Geometry]*gpuMesh
	grids  map[*scene.Grid]*gpuLines

	capture  func(*image.RGBA, error)
	disposed bool
	log      *zap.Logger
}

var _ mount.Surface = (*Renderer)(nil)

type gpuMesh struct {
	vao, vbo uint32
	ranges   []drawRange
}

type gpuLines struct {
	vao, vbo uint32
	count    int32
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := glInit(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config: cfg,
		meshes: make(map[*scene.Geometry]*gpuMesh),
		grids:  make(map[*scene.Grid]*gpuLines),
		log:    logger.Named("renderer"),
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	if r.meshProgram, err = shader.New(meshVertexShader, meshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	if r.lineProgram, err = shader.New(lineVertexShader, lineFragmentShader); err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return r, nil
}

// Factory returns a constructor for renderers sized to the window at creation.
func Factory(size func() (int, int)) func(background mgl32.Vec4) (mount.Surface, error) {
	return func(background mgl32.Vec4) (mount.Surface, error) {
		w, h := size()
		return New(Config{Width: w, Height: h, Background: background})
	}
}

// SetSize handles surface resize.
func (r *Renderer) SetSize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Rect returns the surface rectangle. The surface fills its window.
func (r *Renderer) Rect() picking.Rect {
	return picking.Rect{Width: float32(r.config.Width), Height: float32(r.config.Height)}
}

// Render clears to the background color and draws every mesh and grid of g.
func (r *Renderer) Render(g *scene.Graph, cam *camera.Camera, rig lighting.Rig) {
	if r.disposed {
		return
	}

	bg := r.config.Background
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	type gridDraw struct {
		grid  *scene.Grid
		world mgl32.Mat4
	}
	var grids []gridDraw

	r.meshProgram.Use()
	r.meshProgram.SetMat4("uView", view)
	r.meshProgram.SetMat4("uProjection", proj)
	r.meshProgram.SetVec3("uAmbient", rig.Ambient.Color.Mul(rig.Ambient.Intensity))
	r.meshProgram.SetVec3("uSunColor", rig.Sun.Color.Mul(rig.Sun.Intensity))
	r.meshProgram.SetVec3("uSunDir", rig.Sun.Direction)

	g.Walk(g.Root(), func(_ scene.NodeID, n *scene.Node, world mgl32.Mat4) bool {
		switch n.Kind {
		case scene.KindMesh:
			r.drawMesh(n.Mesh, world)
		case scene.KindHelper:
			if n.Grid != nil {
				grids = append(grids, gridDraw{n.Grid, world})
			}
		}
		return true
	})

	if len(grids) > 0 {
		r.lineProgram.Use()
		r.lineProgram.SetMat4("uView", view)
		r.lineProgram.SetMat4("uProjection", proj)
		for _, gd := range grids {
			r.drawGrid(gd.grid, gd.world)
		}
	}
	gl.BindVertexArray(0)

	if r.capture != nil {
		fn := r.capture
		r.capture = nil
		fn(r.readPixels())
	}
}

// RequestCapture asks for the next rendered frame. fn is called on the
// render thread once that frame is drawn, replacing any earlier request.
func (r *Renderer) RequestCapture(fn func(*image.RGBA, error)) {
	r.capture = fn
}

func (r *Renderer) readPixels() (*image.RGBA, error) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", w, h)
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return screenshot.FromPixels(pixels, w, h)
}

func (r *Renderer) drawMesh(m *scene.Mesh, world mgl32.Mat4) {
	if m == nil || m.Geometry == nil {
		return
	}
	gm := r.meshes[m.Geometry]
	if gm == nil {
		gm = r.uploadMesh(m.Geometry)
		r.meshes[m.Geometry] = gm
	}

	r.meshProgram.SetMat4("uModel", world)
	gl.BindVertexArray(gm.vao)
	for _, dr := range gm.ranges {
		mat := m.MaterialFor(dr.group)
		if mat == nil || dr.count == 0 {
			continue
		}
		r.meshProgram.SetVec4("uColor", mat.Color)
		r.meshProgram.SetVec3("uEmissive", mat.Emissive)
		gl.DrawArrays(gl.TRIANGLES, dr.first, dr.count)
	}
}

func (r *Renderer) drawGrid(g *scene.Grid, world mgl32.Mat4) {
	lines := r.grids[g]
	if lines == nil {
		lines = r.uploadGrid(g)
		r.grids[g] = lines
	}
	r.lineProgram.SetMat4("uModel", world)
	gl.BindVertexArray(lines.vao)
	gl.DrawArrays(gl.LINES, 0, lines.count)
}

func (r *Renderer) uploadMesh(geo *scene.Geometry) *gpuMesh {
	verts, ranges := meshVertices(geo)
	gm := &gpuMesh{ranges: ranges}
	gm.vao, gm.vbo = uploadInterleaved(verts, meshStride)
	r.log.Debug("mesh uploaded",
		zap.Uint32("vao", gm.vao),
		zap.Int("vertices", len(verts)/meshStride),
	)
	return gm
}

func (r *Renderer) uploadGrid(g *scene.Grid) *gpuLines {
	verts := gridVertices(g)
	gls := &gpuLines{count: int32(len(verts) / lineStride)}
	gls.vao, gls.vbo = uploadInterleaved(verts, lineStride)
	return gls
}

// uploadInterleaved creates a VAO with two vec3 attributes at locations 0 and 1.
func uploadInterleaved(verts []float32, stride int32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(verts) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	}

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

// Dispose releases every GL object the renderer created. Calling it again is a no-op.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.log.Info("disposing renderer",
		zap.Int("meshes", len(r.meshes)),
		zap.Int("grids", len(r.grids)),
	)

	for _, gm := range r.meshes {
		gl.DeleteVertexArrays(1, &gm.vao)
		gl.DeleteBuffers(1, &gm.vbo)
	}
	for _, gls := range r.grids {
		gl.DeleteVertexArrays(1, &gls.vao)
		gl.DeleteBuffers(1, &gls.vbo)
	}
	r.meshes = nil
	r.grids = nil

	r.meshProgram.Delete()
	r.lineProgram.Delete()
}

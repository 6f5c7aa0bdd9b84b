package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Mul(o Vec3) Vec3      { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera orbits a z-up scene. Yaw turns about the world z axis, Pitch tilts
// toward the viewer and Roll spins the image. After rotation the viewer looks
// along +Y.
type Camera struct {
	Yaw, Pitch, Roll float64
	Zoom             float64
	Distance         float64
	Aspect           Vec3
}

// DefaultEye is the initial viewpoint of the 3D blade plot.
var DefaultEye = Vec3{1.5, 1.5, 1.2}

// NewCamera returns a camera looking at the origin from DefaultEye, with the
// z axis drawn at half scale.
func NewCamera() *Camera {
	return CameraFromEye(DefaultEye)
}

// CameraFromEye orients a camera so that eye lies straight toward the viewer.
func CameraFromEye(eye Vec3) *Camera {
	azimuth := math.Atan2(eye.Y, eye.X)
	return &Camera{
		Yaw:      -math.Pi/2 - azimuth,
		Pitch:    math.Atan2(eye.Z, math.Hypot(eye.X, eye.Y)),
		Zoom:     1,
		Distance: math.Max(eye.Length(), 1.5) * 2,
		Aspect:   Vec3{1, 1, 0.5},
	}
}

func (c *Camera) RotateX(a float64) { c.Pitch += a }
func (c *Camera) RotateY(a float64) { c.Roll += a }
func (c *Camera) RotateZ(a float64) { c.Yaw += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint maps a world point into view space.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	if c.Aspect != (Vec3{}) {
		p = p.Mul(c.Aspect)
	}
	cz, sz := math.Cos(c.Yaw), math.Sin(c.Yaw)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cx, sx := math.Cos(c.Pitch), math.Sin(c.Pitch)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cr, sr := math.Cos(c.Roll), math.Sin(c.Roll)
	p.X, p.Z = p.X*cr+p.Z*sr, -p.X*sr+p.Z*cr
	return p
}

// ProjectF converts a world point to screen coordinates on a w×h surface.
// Depth grows away from the viewer.
func (c *Camera) ProjectF(p Vec3, w, h float64) (x, y, depth float64, ok bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	dist := c.Distance
	if dist <= 0 {
		dist = 6
	}
	if rot.Y <= -dist+1e-6 {
		return 0, 0, 0, false
	}
	scale := dist / (dist + rot.Y)
	pScale := math.Min(w, h) / 2.6
	x = rot.X*scale*pScale + w/2
	y = -rot.Z*scale*pScale + h/2
	return x, y, rot.Y, true
}

// Project converts a world point to integer screen coordinates and reports
// whether it lands on screen.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	x, y, d, ok := c.ProjectF(p, float64(sw), float64(sh))
	if !ok {
		return 0, 0, 0, false
	}
	sx, sy := int(math.Round(x)), int(math.Round(y))
	return sx, sy, d, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
	Ink        int
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                  { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3, ink int) { w.Edges = append(w.Edges, Edge{s, e, ink}) }
func (w *Wireframe) Clear()                     { w.Edges = w.Edges[:0] }

// AddPolyline joins consecutive points with edges.
func (w *Wireframe) AddPolyline(pts []Vec3, ink int) {
	for i := 1; i < len(pts); i++ {
		w.AddEdge(pts[i-1], pts[i], ink)
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	ink            int
}

// Render3D draws the wireframe far-to-near so nearer blades paint over the
// ink of farther ones.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.PixelSize()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Ink})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		c.SetPen(e.ink)
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

// AxesWireframe draws the three world axes from the origin.
func AxesWireframe(l float64, ink int) *Wireframe {
	w, o := NewWireframe(), Vec3{}
	w.AddEdge(o, Vec3{l, 0, 0}, ink)
	w.AddEdge(o, Vec3{0, l, 0}, ink)
	w.AddEdge(o, Vec3{0, 0, l}, ink)
	return w
}

package soft

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/scene"
)

// vertex is a post-transform vertex in window coordinates. invW is kept for
// perspective-correct interpolation of the normals.
type vertex struct {
	x, y, z    float32
	invW       float32
	world, vew mgl32.Vec3
}

// edgeFunction computes the signed area of the parallelogram (a, b, c).
func edgeFunction(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

func min3(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }
func max3(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }

type drawState struct {
	color *Texture
	depth *Texture
	mat   *scene.Material
	scene *scene.Scene
}

func (d *drawState) shade(worldN, viewN mgl32.Vec3) mgl32.Vec4 {
	if d.mat.Kind == scene.NormalView {
		n := scene.PackNormal(normalize(viewN))
		return n.Vec4(1)
	}
	c := scene.Shade(d.mat.Color, normalize(worldN), d.scene.Ambient, d.scene.Directional)
	return c.Vec4(1)
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

// drawNode rasterizes every triangle of n. Triangles crossing the near plane
// are dropped rather than clipped.
func (d *drawState) drawNode(n *scene.Node, view, proj mgl32.Mat4) {
	model := n.Model()
	mvp := proj.Mul4(view).Mul4(model)
	normalMat := model.Mat3().Inv().Transpose()
	viewMat := view.Mat3()
	w, h := float32(d.color.width), float32(d.color.height)

	m := n.Mesh
	verts := make([]vertex, len(m.Positions))
	clipped := make([]bool, len(m.Positions))
	for i, p := range m.Positions {
		c := mvp.Mul4x1(p.Vec4(1))
		if c[3] <= 0 || c[2] < -c[3] {
			clipped[i] = true
			continue
		}
		invW := 1 / c[3]
		wn := normalMat.Mul3x1(m.Normals[i])
		verts[i] = vertex{
			x:     (c[0]*invW*0.5 + 0.5) * w,
			y:     (c[1]*invW*0.5 + 0.5) * h,
			z:     c[2]*invW*0.5 + 0.5,
			invW:  invW,
			world: wn,
			vew:   viewMat.Mul3x1(wn),
		}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if clipped[a] || clipped[b] || clipped[c] {
			continue
		}
		d.triangle(verts[a], verts[b], verts[c])
	}
}

func (d *drawState) triangle(v0, v1, v2 vertex) {
	area := edgeFunction(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area == 0 {
		return
	}
	// no culling: normalize the winding
	if area < 0 {
		v0, v2 = v2, v0
		area = -area
	}
	invArea := 1 / area

	width, height := d.color.width, d.color.height
	minX := max(int(math32.Floor(min3(v0.x, v1.x, v2.x))), 0)
	maxX := min(int(math32.Ceil(max3(v0.x, v1.x, v2.x))), width-1)
	minY := max(int(math32.Floor(min3(v0.y, v1.y, v2.y))), 0)
	maxY := min(int(math32.Ceil(max3(v0.y, v1.y, v2.y))), height-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edgeFunction(v1.x, v1.y, v2.x, v2.y, px, py)
			w1 := edgeFunction(v2.x, v2.y, v0.x, v0.y, px, py)
			w2 := edgeFunction(v0.x, v0.y, v1.x, v1.y, px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			w0 *= invArea
			w1 *= invArea
			w2 *= invArea

			z := w0*v0.z + w1*v1.z + w2*v2.z
			if z < 0 || z > 1 {
				continue
			}
			idx := y*width + x
			if d.depth != nil {
				if z >= d.depth.pix[idx][0] {
					continue
				}
				d.depth.Set(x, y, mgl32.Vec4{z})
			}

			// perspective-correct attribute weights
			p0, p1, p2 := w0*v0.invW, w1*v1.invW, w2*v2.invW
			inv := 1 / (p0 + p1 + p2)
			p0, p1, p2 = p0*inv, p1*inv, p2*inv
			worldN := v0.world.Mul(p0).Add(v1.world.Mul(p1)).Add(v2.world.Mul(p2))
			viewN := v0.vew.Mul(p0).Add(v1.vew.Mul(p1)).Add(v2.vew.Mul(p2))
			d.color.Set(x, y, d.shade(worldN, viewN))
		}
	}
}

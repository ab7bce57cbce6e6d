package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with per-vertex normals.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// NewSphere builds a UV sphere.
func NewSphere(radius float32, widthSegments, heightSegments int) *Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	m := &Mesh{Name: "sphere"}
	for y := 0; y <= heightSegments; y++ {
		v := float64(y) / float64(heightSegments)
		theta := v * math.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float64(x) / float64(widthSegments)
			phi := u * 2 * math.Pi
			n := mgl32.Vec3{
				float32(-math.Cos(phi) * math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			m.Positions = append(m.Positions, n.Mul(radius))
			m.Normals = append(m.Normals, n)
		}
	}
	stride := uint32(widthSegments + 1)
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*stride + uint32(x) + 1
			b := uint32(y)*stride + uint32(x)
			c := uint32(y+1)*stride + uint32(x)
			d := uint32(y+1)*stride + uint32(x) + 1
			if y != 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if y != heightSegments-1 {
				m.Indices = append(m.Indices, b, c, d)
			}
		}
	}
	return m
}

// NewBox builds an axis-aligned box centered on the origin with flat faces.
func NewBox(width, height, depth float32) *Mesh {
	hw, hh, hd := width/2, height/2, depth/2
	faces := []struct {
		n      mgl32.Vec3
		corner [4]mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}},
	}
	m := &Mesh{Name: "box"}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for _, c := range f.corner {
			m.Positions = append(m.Positions, c)
			m.Normals = append(m.Normals, f.n)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// NewPlane builds a plane in the XY plane facing +Z, subdivided into a grid.
func NewPlane(width, height float32, widthSegments, heightSegments int) *Mesh {
	widthSegments = max(widthSegments, 1)
	heightSegments = max(heightSegments, 1)
	m := &Mesh{Name: "plane"}
	for iy := 0; iy <= heightSegments; iy++ {
		y := float32(iy)/float32(heightSegments)*height - height/2
		for ix := 0; ix <= widthSegments; ix++ {
			x := float32(ix)/float32(widthSegments)*width - width/2
			m.Positions = append(m.Positions, mgl32.Vec3{x, -y, 0})
			m.Normals = append(m.Normals, mgl32.Vec3{0, 0, 1})
		}
	}
	stride := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(ix) + stride*uint32(iy)
			b := uint32(ix) + stride*uint32(iy+1)
			c := uint32(ix+1) + stride*uint32(iy+1)
			d := uint32(ix+1) + stride*uint32(iy)
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}
	return m
}

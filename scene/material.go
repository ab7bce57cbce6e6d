package scene

import "github.com/go-gl/mathgl/mgl32"

// MaterialKind selects the shading model used for a surface.
type MaterialKind int

const (
	// Standard is diffuse shading from the scene's ambient and directional lights.
	Standard MaterialKind = iota
	// NormalView writes the view-space normal packed into [0,1].
	NormalView
)

func (k MaterialKind) String() string {
	if k == NormalView {
		return "normal"
	}
	return "standard"
}

// Material describes how a surface is shaded.
type Material struct {
	Kind  MaterialKind
	Color mgl32.Vec3
}

// NewStandardMaterial returns a diffuse material of the given color.
func NewStandardMaterial(color mgl32.Vec3) *Material {
	return &Material{Kind: Standard, Color: color}
}

// NewNormalMaterial returns the normal visualization material used by the
// auxiliary normal pass.
func NewNormalMaterial() *Material {
	return &Material{Kind: NormalView, Color: mgl32.Vec3{1, 1, 1}}
}

// PackNormal maps a unit normal from [-1,1] to [0,1] per component.
func PackNormal(n mgl32.Vec3) mgl32.Vec3 {
	return n.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
}

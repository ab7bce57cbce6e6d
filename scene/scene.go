package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node places a mesh with a material in the world.
type Node struct {
	Name     string
	Mesh     *Mesh
	Material *Material
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians, applied X then Y then Z.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Visible  bool
}

// NewNode returns a visible node at the origin with unit scale.
func NewNode(name string, mesh *Mesh, mat *Material) *Node {
	return &Node{Name: name, Mesh: mesh, Material: mat, Scale: mgl32.Vec3{1, 1, 1}, Visible: true}
}

// Model returns the node's local-to-world matrix.
func (n *Node) Model() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := mgl32.AnglesToQuat(n.Rotation[2], n.Rotation[1], n.Rotation[0], mgl32.ZYX).Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// Scene is the set of nodes and lights drawn each pass.
type Scene struct {
	Nodes       []*Node
	Background  mgl32.Vec3
	Ambient     AmbientLight
	Directional DirectionalLight

	override *Material
}

// New returns an empty scene with a black background.
func New() *Scene {
	return &Scene{}
}

// Add appends nodes to the scene.
func (s *Scene) Add(nodes ...*Node) {
	s.Nodes = append(s.Nodes, nodes...)
}

// OverrideMaterial returns the material currently replacing every surface's
// own material, or nil.
func (s *Scene) OverrideMaterial() *Material {
	return s.override
}

// MaterialFor returns the material a node is drawn with right now.
func (s *Scene) MaterialFor(n *Node) *Material {
	if s.override != nil {
		return s.override
	}
	if n.Material == nil {
		return &Material{Kind: Standard, Color: mgl32.Vec3{1, 1, 1}}
	}
	return n.Material
}

// WithOverride draws every surface with m while fn runs. The previous override
// is restored when fn returns, panics included.
func (s *Scene) WithOverride(m *Material, fn func() error) error {
	prev := s.override
	s.override = m
	defer func() { s.override = prev }()
	return fn()
}

package render

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformKind is the shader-visible type of a uniform value.
type UniformKind int

const (
	UniformFloat UniformKind = iota
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformTexture
)

func (k UniformKind) String() string {
	switch k {
	case UniformFloat:
		return "float"
	case UniformInt:
		return "int"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformTexture:
		return "sampler2D"
	}
	return fmt.Sprintf("UniformKind(%d)", int(k))
}

// Uniform is a single typed uniform value. Only the field matching Kind is
// meaningful.
type Uniform struct {
	Kind    UniformKind
	Float   float32
	Int     int32
	Vec     mgl32.Vec4
	Texture Texture
}

// UniformSet maps uniform names to typed values. A set is owned by exactly one
// effect; textures stored in it are borrowed, never owned.
type UniformSet struct {
	values map[string]*Uniform
}

// NewUniformSet returns an empty set.
func NewUniformSet() *UniformSet {
	return &UniformSet{values: make(map[string]*Uniform)}
}

func (s *UniformSet) put(name string, kind UniformKind) *Uniform {
	u, ok := s.values[name]
	if !ok {
		u = &Uniform{}
		s.values[name] = u
	}
	*u = Uniform{Kind: kind}
	return u
}

// SetFloat stores a float uniform, updating in place if it exists.
func (s *UniformSet) SetFloat(name string, v float32) {
	s.put(name, UniformFloat).Float = v
}

// SetInt stores an int uniform.
func (s *UniformSet) SetInt(name string, v int32) {
	s.put(name, UniformInt).Int = v
}

// SetBool stores a bool as an int uniform, the way GLSL expects it.
func (s *UniformSet) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	s.SetInt(name, i)
}

// SetVec2 stores a vec2 uniform.
func (s *UniformSet) SetVec2(name string, v mgl32.Vec2) {
	s.put(name, UniformVec2).Vec = mgl32.Vec4{v[0], v[1], 0, 0}
}

// SetVec3 stores a vec3 uniform.
func (s *UniformSet) SetVec3(name string, v mgl32.Vec3) {
	s.put(name, UniformVec3).Vec = v.Vec4(0)
}

// SetVec4 stores a vec4 uniform.
func (s *UniformSet) SetVec4(name string, v mgl32.Vec4) {
	s.put(name, UniformVec4).Vec = v
}

// SetTexture stores a texture reference. A nil texture is stored as present
// but unbound.
func (s *UniformSet) SetTexture(name string, t Texture) {
	s.put(name, UniformTexture).Texture = t
}

// Get returns the uniform stored under name.
func (s *UniformSet) Get(name string) (Uniform, bool) {
	u, ok := s.values[name]
	if !ok {
		return Uniform{}, false
	}
	return *u, true
}

// Has reports whether name is present.
func (s *UniformSet) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Float returns the float uniform name, or 0 when absent or of another kind.
func (s *UniformSet) Float(name string) float32 {
	if u, ok := s.values[name]; ok && u.Kind == UniformFloat {
		return u.Float
	}
	return 0
}

// Int returns the int uniform name, or 0.
func (s *UniformSet) Int(name string) int32 {
	if u, ok := s.values[name]; ok && u.Kind == UniformInt {
		return u.Int
	}
	return 0
}

// Bool returns the int uniform name interpreted as a bool.
func (s *UniformSet) Bool(name string) bool {
	return s.Int(name) != 0
}

// Vec2 returns the vec2 uniform name, or the zero vector.
func (s *UniformSet) Vec2(name string) mgl32.Vec2 {
	if u, ok := s.values[name]; ok && u.Kind == UniformVec2 {
		return mgl32.Vec2{u.Vec[0], u.Vec[1]}
	}
	return mgl32.Vec2{}
}

// Texture returns the texture bound to name, or nil.
func (s *UniformSet) Texture(name string) Texture {
	if u, ok := s.values[name]; ok && u.Kind == UniformTexture {
		return u.Texture
	}
	return nil
}

// Sampler returns the texture bound to name when it supports CPU access.
func (s *UniformSet) Sampler(name string) (Sampler, bool) {
	smp, ok := s.Texture(name).(Sampler)
	return smp, ok
}

// Names returns the uniform names in sorted order.
func (s *UniformSet) Names() []string {
	names := make([]string, 0, len(s.values))
	for n := range s.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of uniforms.
func (s *UniformSet) Len() int {
	return len(s.values)
}

// Require returns an error naming the first missing uniform.
func (s *UniformSet) Require(names ...string) error {
	for _, n := range names {
		if _, ok := s.values[n]; !ok {
			return fmt.Errorf("%w: uniform %q is not set", ErrInvalidConfig, n)
		}
	}
	return nil
}

package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gomoebius/render"
	"github.com/richinsley/gomoebius/scene"
)

// sceneProgram is a material program with its uniform locations cached.
type sceneProgram struct {
	program       uint32
	modelLoc      int32
	viewLoc       int32
	projectionLoc int32
	albedoLoc     int32
	ambientLoc    int32
	lightColorLoc int32
	lightDirLoc   int32
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func newSceneProgram(vs, fs string) (*sceneProgram, error) {
	program, err := newProgram(vs, fs)
	if err != nil {
		return nil, err
	}
	return &sceneProgram{
		program:       program,
		modelLoc:      uniformLocation(program, "u_model"),
		viewLoc:       uniformLocation(program, "u_view"),
		projectionLoc: uniformLocation(program, "u_projection"),
		albedoLoc:     uniformLocation(program, "u_albedo"),
		ambientLoc:    uniformLocation(program, "u_ambient"),
		lightColorLoc: uniformLocation(program, "u_lightColor"),
		lightDirLoc:   uniformLocation(program, "u_lightDir"),
	}, nil
}

func (p *sceneProgram) destroy() {
	gl.DeleteProgram(p.program)
}

func setVec3(loc int32, v mgl32.Vec3) {
	if loc != -1 {
		gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func setMat4(loc int32, m mgl32.Mat4) {
	if loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// meshBuffers holds the interleaved position/normal buffer and index buffer
// of one mesh.
type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
}

func uploadMesh(m *scene.Mesh) (*meshBuffers, error) {
	if len(m.Normals) != len(m.Positions) {
		return nil, fmt.Errorf("mesh %q has %d normals for %d positions", m.Name, len(m.Normals), len(m.Positions))
	}
	data := make([]float32, 0, len(m.Positions)*6)
	for i, p := range m.Positions {
		n := m.Normals[i]
		data = append(data, p[0], p[1], p[2], n[0], n[1], n[2])
	}

	mb := &meshBuffers{count: int32(len(m.Indices))}
	gl.GenVertexArrays(1, &mb.vao)
	gl.GenBuffers(1, &mb.vbo)
	gl.GenBuffers(1, &mb.ebo)

	gl.BindVertexArray(mb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(3*4))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return mb, nil
}

func (m *meshBuffers) destroy() {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
}

func (r *Renderer) mesh(m *scene.Mesh) (*meshBuffers, error) {
	if mb, ok := r.meshes[m]; ok {
		return mb, nil
	}
	mb, err := uploadMesh(m)
	if err != nil {
		return nil, err
	}
	r.meshes[m] = mb
	return mb, nil
}

// RenderScene clears the bound target to the background and draws every
// visible node with depth testing.
func (r *Renderer) RenderScene(sc *scene.Scene, cam *scene.Camera) error {
	if r.destroyed {
		return fmt.Errorf("renderer: %w", render.ErrDisposed)
	}
	if err := cam.Validate(); err != nil {
		return err
	}
	bg := sc.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.ClearDepth(1)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	defer gl.Disable(gl.DEPTH_TEST)

	view, proj := cam.View(), cam.ProjectionMatrix()
	ambient := sc.Ambient.Color.Mul(sc.Ambient.Intensity)
	lightColor := sc.Directional.Color.Mul(sc.Directional.Intensity)
	lightDir := sc.Directional.Direction()

	for _, n := range sc.Nodes {
		if !n.Visible || n.Mesh == nil {
			continue
		}
		mb, err := r.mesh(n.Mesh)
		if err != nil {
			return err
		}
		mat := sc.MaterialFor(n)
		p := r.standard
		if mat.Kind == scene.NormalView {
			p = r.normal
		}
		gl.UseProgram(p.program)
		setMat4(p.modelLoc, n.Model())
		setMat4(p.viewLoc, view)
		setMat4(p.projectionLoc, proj)
		setVec3(p.albedoLoc, mat.Color)
		setVec3(p.ambientLoc, ambient)
		setVec3(p.lightColorLoc, lightColor)
		setVec3(p.lightDirLoc, lightDir)

		gl.BindVertexArray(mb.vao)
		gl.DrawElements(gl.TRIANGLES, mb.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	if r.bound != nil && r.bound.desc.Mipmaps {
		gl.BindTexture(gl.TEXTURE_2D, r.bound.color.id)
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	return nil
}

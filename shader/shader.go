// Package shader holds the GLSL sources of the scene and effect programs.
package shader

// Full-screen passes draw a single triangle pair covering clip space; uv runs
// from (0,0) at the bottom left to (1,1) at the top right.

const fullscreenVertexBody = `
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// blitBody copies a composited frame to the default framebuffer.
const blitBody = `
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

func header(isGLES bool) string {
	if isGLES {
		return sceneFragmentHeaderGLES
	}
	return sceneFragmentHeaderGL
}

// FullscreenVertex is the vertex stage of every full-screen pass.
func FullscreenVertex(isGLES bool) string {
	return header(isGLES) + fullscreenVertexBody
}

// BlitFragment samples u_texture unchanged.
func BlitFragment(isGLES bool) string {
	return header(isGLES) + blitBody
}

package shader

// Scene programs take object-space positions and normals and the usual
// model / view / projection matrices. The standard program is lit with one
// ambient and one directional light; the normal program writes view-space
// normals packed into [0,1].

const sceneVertexGL = `#version 410 core
layout (location = 0) in vec3 in_position;
layout (location = 1) in vec3 in_normal;
uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
out vec3 v_worldNormal;
out vec3 v_viewNormal;
void main() {
    mat3 normalMatrix = mat3(transpose(inverse(u_model)));
    v_worldNormal = normalize(normalMatrix * in_normal);
    v_viewNormal = normalize(mat3(u_view) * v_worldNormal);
    gl_Position = u_projection * u_view * u_model * vec4(in_position, 1.0);
}
`

const sceneVertexGLES = `#version 300 es
layout (location = 0) in vec3 in_position;
layout (location = 1) in vec3 in_normal;
uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
out vec3 v_worldNormal;
out vec3 v_viewNormal;
void main() {
    mat3 normalMatrix = mat3(transpose(inverse(u_model)));
    v_worldNormal = normalize(normalMatrix * in_normal);
    v_viewNormal = normalize(mat3(u_view) * v_worldNormal);
    gl_Position = u_projection * u_view * u_model * vec4(in_position, 1.0);
}
`

const standardBody = `
in vec3 v_worldNormal;
in vec3 v_viewNormal;
out vec4 fragColor;
uniform vec3 u_albedo;
uniform vec3 u_ambient;
uniform vec3 u_lightColor;
uniform vec3 u_lightDir;
void main() {
    vec3 n = normalize(v_worldNormal);
    float ndotl = max(dot(n, u_lightDir), 0.0);
    vec3 c = u_albedo / 3.14159265 * (u_ambient + u_lightColor * ndotl);
    fragColor = vec4(c, 1.0);
}
`

const normalBody = `
in vec3 v_worldNormal;
in vec3 v_viewNormal;
out vec4 fragColor;
void main() {
    fragColor = vec4(normalize(v_viewNormal) * 0.5 + 0.5, 1.0);
}
`

const sceneFragmentHeaderGL = "#version 410 core\n"

const sceneFragmentHeaderGLES = "#version 300 es\nprecision highp float;\n"

// SceneVertex returns the vertex stage shared by both scene programs.
func SceneVertex(isGLES bool) string {
	if isGLES {
		return sceneVertexGLES
	}
	return sceneVertexGL
}

// StandardFragment returns the lit material fragment stage.
func StandardFragment(isGLES bool) string {
	if isGLES {
		return sceneFragmentHeaderGLES + standardBody
	}
	return sceneFragmentHeaderGL + standardBody
}

// NormalFragment returns the fragment stage writing packed view-space normals.
func NormalFragment(isGLES bool) string {
	if isGLES {
		return sceneFragmentHeaderGLES + normalBody
	}
	return sceneFragmentHeaderGL + normalBody
}

package shader

// Effect programs are assembled as preamble + body + main. A body defines
//
//	vec4 effect(vec4 inputColor, vec2 uv)
//
// and may declare its own uniforms. The bodies are GLSL ES 3.00 and are run
// through the translator before compilation.

const effectPreamble = `#version 300 es
precision highp float;
precision highp int;

uniform sampler2D inputBuffer;
uniform vec2  resolution;
uniform int   blendFunc;
uniform float blendOpacity;

out vec4 fragColor;

float luma(vec3 c) { return dot(c, vec3(0.2126, 0.7152, 0.0722)); }
`

const effectMain = `
void main(void)
{
    vec2 uv = gl_FragCoord.xy / resolution;
    vec4 inputColor = texture(inputBuffer, uv);
    if (blendFunc == 2) {
        fragColor = inputColor;
        return;
    }
    vec4 fx = effect(inputColor, uv);
    if (blendFunc == 1) {
        fx = inputColor * fx;
    }
    fragColor = mix(inputColor, fx, clamp(blendOpacity, 0.0, 1.0));
}
`

// GetEffectShader assembles the complete fragment source of an effect.
func GetEffectShader(body string) string {
	return effectPreamble + body + effectMain
}

// OutlineFragment draws ink where depth or normal discontinuities occur,
// displacing the sample position with a hash-scaled wave, and hatches dark
// regions.
const OutlineFragment = `
uniform float cameraNear;
uniform float cameraFar;
uniform int   cameraOrthographic;
uniform sampler2D uDepth;
uniform sampler2D uNormal;
uniform vec2  uResolution;
uniform float uFrequency;
uniform float uAmplitude;
uniform sampler2D uNoiseTex;
uniform int   uHasNoise;

const float DEPTH_THRESHOLD  = 0.02;
const float NORMAL_THRESHOLD = 0.6;
const float HATCH_THRESHOLD  = 0.35;
const float CROSS_THRESHOLD  = 0.15;
const float HATCH_SPACING    = 8.0;
const vec3  INK = vec3(0.0);

float hash(vec2 p) {
    return fract(sin(dot(p, vec2(12.9898, 78.233))) * 43758.5453);
}

float linearDepth(float d) {
    if (cameraOrthographic == 1) {
        return d;
    }
    float viewZ = (cameraNear * cameraFar) / ((cameraFar - cameraNear) * d - cameraFar);
    return (viewZ + cameraNear) / (cameraNear - cameraFar);
}

ivec2 texelAt(sampler2D s, vec2 frag) {
    vec2 size = vec2(textureSize(s, 0));
    return ivec2(floor(frag / uResolution * size));
}

float depthAt(ivec2 p) {
    ivec2 size = textureSize(uDepth, 0) - 1;
    return linearDepth(texelFetch(uDepth, clamp(p, ivec2(0), size), 0).r);
}

vec3 normalAt(ivec2 p) {
    ivec2 size = textureSize(uNormal, 0) - 1;
    return texelFetch(uNormal, clamp(p, ivec2(0), size), 0).rgb;
}

vec4 effect(vec4 inputColor, vec2 uv)
{
    vec2 frag = gl_FragCoord.xy;
    float h = hash(floor(frag));
    vec2 warped = frag + vec2(h * sin(frag.y * uFrequency), h * cos(frag.x * uFrequency)) * uAmplitude;

    ivec2 dp = texelAt(uDepth, warped);
    ivec2 np = texelAt(uNormal, warped);
    float dgx = 0.0, dgy = 0.0;
    vec3 ngx = vec3(0.0), ngy = vec3(0.0);
    for (int j = -1; j <= 1; j++) {
        for (int i = -1; i <= 1; i++) {
            float wx = float(i) * (j == 0 ? 2.0 : 1.0);
            float wy = float(j) * (i == 0 ? 2.0 : 1.0);
            float d = depthAt(dp + ivec2(i, j));
            vec3 n = normalAt(np + ivec2(i, j));
            dgx += wx * d;
            dgy += wy * d;
            ngx += wx * n;
            ngy += wy * n;
        }
    }
    float depthEdge = sqrt(dgx * dgx + dgy * dgy);
    float normalEdge = sqrt(dot(ngx, ngx) + dot(ngy, ngy));
    if (depthEdge > DEPTH_THRESHOLD || normalEdge > NORMAL_THRESHOLD) {
        return vec4(INK, inputColor.a);
    }

    float l = luma(inputColor.rgb);
    if (l >= HATCH_THRESHOLD) {
        return inputColor;
    }
    float noise = 0.5;
    if (uHasNoise == 1) {
        ivec2 ns = textureSize(uNoiseTex, 0);
        noise = texelFetch(uNoiseTex, ivec2(floor(frag)) % ns, 0).r;
    }
    float offset = noise * 4.0;
    if (mod(frag.x + frag.y + offset, HATCH_SPACING) < 1.0) {
        return vec4(INK, inputColor.a);
    }
    if (l < CROSS_THRESHOLD && mod(frag.x - frag.y + 1024.0 + offset, HATCH_SPACING) < 1.0) {
        return vec4(INK, inputColor.a);
    }
    return inputColor;
}
`

// ToneMapFragment applies the GT tone curve per channel.
const ToneMapFragment = `
uniform float maxLuminance;
uniform float contrast;
uniform float linearSectionStart;
uniform float linearSectionLength;
uniform float blackTightnessC;
uniform float blackTightnessB;
uniform int   enabled;

float curve(float x) {
    float P = maxLuminance;
    float a = contrast;
    float m = linearSectionStart;
    float l0 = (P - m) * linearSectionLength / a;
    float S0 = m + l0;
    float S1 = m + a * l0;
    float CP = P > S1 ? -(a * P / (P - S1)) / P : 0.0;
    x = max(x, 0.0);
    float g;
    if (x < m) {
        g = m * pow(x / m, blackTightnessC);
    } else if (x < S0) {
        g = m + a * (x - m);
    } else {
        g = P - (P - S1) * exp(CP * (x - S0));
    }
    return g + blackTightnessB * (1.0 - g / P);
}

vec4 effect(vec4 inputColor, vec2 uv)
{
    if (enabled == 0) {
        return inputColor;
    }
    return vec4(curve(inputColor.r), curve(inputColor.g), curve(inputColor.b), inputColor.a);
}
`

// AntialiasFragment blends pixels across luma edges, weighting the blend by
// the distance to the nearest end of the edge.
const AntialiasFragment = `
uniform float edgeThreshold;
uniform int   maxSearchSteps;
uniform int   predicationMode;
uniform float predicationThreshold;
uniform float predicationScale;
uniform float predicationStrength;
uniform sampler2D uDepth;

float lumaAt(ivec2 p) {
    return luma(texelFetch(inputBuffer, p, 0).rgb);
}

bool inside(ivec2 p, ivec2 size) {
    return p.x >= 0 && p.y >= 0 && p.x < size.x && p.y < size.y;
}

int searchEdge(ivec2 p, ivec2 dir, ivec2 n, ivec2 size, float threshold) {
    int steps = 0;
    for (int i = 0; i < 64; i++) {
        if (steps >= maxSearchSteps) break;
        ivec2 q = p + dir * (steps + 1);
        if (!inside(q, size) || !inside(q + n, size)) break;
        if (abs(lumaAt(q) - lumaAt(q + n)) < threshold) break;
        steps++;
    }
    return steps;
}

vec4 effect(vec4 inputColor, vec2 uv)
{
    ivec2 size = textureSize(inputBuffer, 0);
    ivec2 p = ivec2(floor(gl_FragCoord.xy));
    vec4 c = texelFetch(inputBuffer, p, 0);
    float threshold = edgeThreshold;
    if (predicationMode == 1) {
        ivec2 ds = textureSize(uDepth, 0);
        ivec2 dp = p * ds / size;
        float d = texelFetch(uDepth, dp, 0).r;
        float geo = 0.0;
        geo = max(geo, abs(d - texelFetch(uDepth, clamp(dp + ivec2(-1, 0), ivec2(0), ds - 1), 0).r));
        geo = max(geo, abs(d - texelFetch(uDepth, clamp(dp + ivec2(1, 0), ivec2(0), ds - 1), 0).r));
        geo = max(geo, abs(d - texelFetch(uDepth, clamp(dp + ivec2(0, -1), ivec2(0), ds - 1), 0).r));
        geo = max(geo, abs(d - texelFetch(uDepth, clamp(dp + ivec2(0, 1), ivec2(0), ds - 1), 0).r));
        geo = geo > predicationThreshold ? 1.0 : 0.0;
        threshold *= predicationScale * (1.0 - predicationStrength * geo);
    }
    float l = luma(c.rgb);
    ivec2 dirs[4] = ivec2[4](ivec2(-1, 0), ivec2(1, 0), ivec2(0, -1), ivec2(0, 1));
    vec4 sum = vec4(0.0);
    int edges = 0;
    for (int k = 0; k < 4; k++) {
        ivec2 n = dirs[k];
        ivec2 q = p + n;
        if (!inside(q, size)) continue;
        vec4 nb = texelFetch(inputBuffer, q, 0);
        if (abs(l - luma(nb.rgb)) < threshold) continue;
        ivec2 perp = ivec2(n.y, n.x);
        int d1 = searchEdge(p, perp, n, size, threshold);
        int d2 = searchEdge(p, -perp, n, size, threshold);
        float w = 0.5 / (1.0 + float(min(d1, d2)));
        sum += mix(c, nb, w);
        edges++;
    }
    if (edges == 0) {
        return c;
    }
    vec4 outColor = sum / float(edges);
    return vec4(outColor.rgb, c.a);
}
`

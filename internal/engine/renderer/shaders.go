package renderer

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;

void main() {
	vNormal = mat3(transpose(inverse(uModel))) * aNormal;
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec4 uColor;
uniform vec3 uEmissive;
uniform vec3 uAmbient;
uniform vec3 uSunColor;
uniform vec3 uSunDir;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	// Light both faces.
	if (!gl_FrontFacing) {
		n = -n;
	}
	float diffuse = max(dot(n, -uSunDir), 0.0);
	vec3 light = uAmbient + uSunColor * diffuse;
	FragColor = vec4(uColor.rgb * light + uEmissive, uColor.a);
}
`

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vColor;

void main() {
	vColor = aColor;
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor, 1.0);
}
`

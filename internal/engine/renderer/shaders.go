package renderer

// Attribute locations shared by the built-in programs. Geometry buffers bind
// their attributes to these locations in their rendering passes.
const (
	PositionLocation = 0
	NormalLocation   = 1
	UVLocation       = 2
	ColorLocation    = 1 // Debug program only
)

const phongVertexSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormalMatrix;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	vNormal = uNormalMatrix * aNormal;
	vUV = aUV;
	gl_Position = uProjection * uView * world;
}
`

const phongFragmentSource = `
#version 410 core

struct Material {
	vec3 ambient;
	vec3 diffuse;
	vec3 specular;
	float shininess;
	float opacity;
};

in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;

uniform Material uMaterial;
uniform sampler2D uDiffuseMap;
uniform bool uHasDiffuseMap;
uniform vec3 uLightDir;
uniform vec3 uEye;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	vec3 l = normalize(-uLightDir);
	vec3 v = normalize(uEye - vWorldPos);
	vec3 h = normalize(l + v);

	vec3 albedo = uMaterial.diffuse;
	if (uHasDiffuseMap) {
		albedo *= texture(uDiffuseMap, vUV).rgb;
	}

	vec3 ambient = uMaterial.ambient + 0.15 * albedo;
	vec3 diffuse = albedo * max(dot(n, l), 0.0);
	vec3 specular = uMaterial.specular * pow(max(dot(n, h), 0.0), max(uMaterial.shininess, 1.0));

	FragColor = vec4(ambient + diffuse + specular, uMaterial.opacity);
}
`

const debugVertexSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uMVP;

out vec3 vColor;

void main() {
	vColor = aColor;
	gl_Position = uMVP * vec4(aPos, 1.0);
}
`

const debugFragmentSource = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor, 1.0);
}
`

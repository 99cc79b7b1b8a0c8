package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Default vertex shader. Instanced draws scale the mesh by i_scale, move
// it to i_position and tint it by i_color.
const DefaultVertexSource = `#version 410 core

layout(location = 0) in vec3 a_position;
layout(location = 1) in vec4 a_color;
layout(location = 2) in vec2 a_uv;
layout(location = 3) in vec3 i_position;
layout(location = 4) in float i_scale;
layout(location = 5) in vec4 i_color;

uniform mat4 u_projection;
uniform int u_instanced;

out vec4 v_color;
out vec2 v_uv;

void main() {
    vec3 p = a_position;
    vec4 c = a_color;
    if (u_instanced == 1) {
        p = p * i_scale + i_position;
        c *= i_color;
    }
    v_color = c;
    v_uv = a_uv;
    gl_Position = u_projection * vec4(p, 1.0);
}
`

const DefaultPixelSource = `#version 410 core

uniform sampler2D u_texture;
uniform int u_textured;

in vec4 v_color;
in vec2 v_uv;
out vec4 FragColor;

void main() {
    vec4 t = vec4(1.0);
    if (u_textured == 1) {
        t = texture(u_texture, v_uv);
    }
    FragColor = v_color * t;
}
`

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

// linkProgram links two compiled stages. The stages stay owned by the
// backend; they are only detached.
func linkProgram(vs, fs uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}

type program struct {
	id         uint32
	projection int32
	instanced  int32
	texture    int32
	textured   int32
}

func newProgram(vs, fs uint32) (*program, error) {
	id, err := linkProgram(vs, fs)
	if err != nil {
		return nil, err
	}
	return &program{
		id:         id,
		projection: gl.GetUniformLocation(id, gl.Str("u_projection\x00")),
		instanced:  gl.GetUniformLocation(id, gl.Str("u_instanced\x00")),
		texture:    gl.GetUniformLocation(id, gl.Str("u_texture\x00")),
		textured:   gl.GetUniformLocation(id, gl.Str("u_textured\x00")),
	}, nil
}

package gfx

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"unicode"
	"unicode/utf8"
)

// DefaultVertexStage names Ebitengine's fixed vertex stage, the only vertex
// stage a Program can use.
const DefaultVertexStage = "default_vert"

// ShaderDir is the directory LoadProgram reads fragment stages from.
const ShaderDir = "shaders"

// Program is a compiled Kage shader paired with the fixed vertex stage.
type Program struct {
	resourceBase
	vertex, fragment string
	native           nativeProgram
}

func (p *Program) base() *resourceBase {
	if p == nil {
		return nil
	}
	return &p.resourceBase
}

// Stages returns the vertex and fragment stage names.
func (p *Program) Stages() (vertex, fragment string) { return p.vertex, p.fragment }

// LoadProgram reads shaders/<fsName>.kage from fsys and compiles it.
func (d *Device) LoadProgram(fsys fs.FS, vsName, fsName string) (*Program, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if vsName != DefaultVertexStage {
		return nil, fmt.Errorf("gfx: load program %s/%s: %w: %q", vsName, fsName, ErrUnsupportedVertexStage, vsName)
	}
	src, err := fs.ReadFile(fsys, path.Join(ShaderDir, fsName+".kage"))
	if err != nil {
		return nil, fmt.Errorf("gfx: load program %s/%s: %w", vsName, fsName, err)
	}
	return d.createProgram(src, vsName, fsName)
}

// CreateProgram compiles Kage source. name is used for diagnostics.
func (d *Device) CreateProgram(src []byte, name string) (*Program, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	return d.createProgram(src, DefaultVertexStage, name)
}

func (d *Device) createProgram(src []byte, vsName, fsName string) (*Program, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, fmt.Errorf("gfx: compile %s: %w", fsName, ErrEmptyBuffer)
	}
	native, err := d.backend.newProgram(src)
	if err != nil {
		return nil, fmt.Errorf("gfx: compile %s: %w", fsName, err)
	}
	p := &Program{vertex: vsName, fragment: fsName, native: native}
	d.register(&p.resourceBase, kindProgram, vsName+"/"+fsName)
	p.release = func() { d.deferRelease(native.dispose) }
	return p, nil
}

// UniformType is the shape of a uniform value.
type UniformType uint8

const (
	UniformSampler UniformType = iota // texture stage binding, no value
	UniformVec4                       // 4 floats per element
	UniformMat4                       // 16 floats per element
)

func (t UniformType) floats() int {
	switch t {
	case UniformVec4:
		return 4
	case UniformMat4:
		return 16
	}
	return 0
}

// Uniform is a named shader parameter.
type Uniform struct {
	resourceBase
	typ UniformType
	num int
}

func (u *Uniform) base() *resourceBase {
	if u == nil {
		return nil
	}
	return &u.resourceBase
}

// Type returns the uniform type.
func (u *Uniform) Type() UniformType { return u.typ }

// CreateUniform declares a uniform with num elements. Value uniforms bind to
// the Kage variable of the same name, so name must be an exported
// identifier; sampler names are free-form.
func (d *Device) CreateUniform(name string, typ UniformType, num int) (*Uniform, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if typ > UniformMat4 {
		return nil, fmt.Errorf("gfx: create uniform %s: unknown type %d", name, typ)
	}
	if num < 1 {
		num = 1
	}
	if typ != UniformSampler && !isExported(name) {
		return nil, fmt.Errorf("gfx: create uniform: %w: %q", ErrInvalidUniformName, name)
	}
	u := &Uniform{typ: typ, num: num}
	d.register(&u.resourceBase, kindUniform, name)
	return u, nil
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(r) {
		return false
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

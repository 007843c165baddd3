package gfx

import "fmt"

// Attrib names a vertex attribute.
type Attrib uint8

const (
	AttribPosition  Attrib = iota // destination position in target pixels
	AttribColor0                  // vertex color, multiplied with the sampled texel
	AttribTexCoord0               // normalized texture coordinate for stage 0
	attribCount
)

var attribNames = [attribCount]string{"Position", "Color0", "TexCoord0"}

func (a Attrib) String() string {
	if a < attribCount {
		return attribNames[a]
	}
	return fmt.Sprintf("Attrib(%d)", uint8(a))
}

// AttribType is the storage type of one attribute component.
type AttribType uint8

const (
	AttribUint8 AttribType = iota
	AttribInt16
	AttribFloat
)

func (t AttribType) size() int {
	switch t {
	case AttribUint8:
		return 1
	case AttribInt16:
		return 2
	default:
		return 4
	}
}

type attribDecl struct {
	num        uint8
	typ        AttribType
	normalized bool
	offset     uint16
}

// VertexLayout describes how vertex bytes are interpreted. Build one with
// Begin, Add and End:
//
//	var layout gfx.VertexLayout
//	layout.Begin().
//		Add(gfx.AttribPosition, 2, gfx.AttribFloat, false).
//		Add(gfx.AttribTexCoord0, 2, gfx.AttribFloat, false).
//		End()
type VertexLayout struct {
	attribs [attribCount]attribDecl
	has     [attribCount]bool
	stride  uint16
	ended   bool
	err     error
}

// Begin resets the layout.
func (l *VertexLayout) Begin() *VertexLayout {
	*l = VertexLayout{}
	return l
}

// Add appends an attribute with num components of type typ. normalized
// applies to integer types: values are mapped to [0, 1] (uint8) or
// [-1, 1] (int16). The first error is kept and reported by Err.
func (l *VertexLayout) Add(a Attrib, num int, typ AttribType, normalized bool) *VertexLayout {
	if l.err != nil {
		return l
	}
	switch {
	case l.ended:
		l.err = fmt.Errorf("%w: Add after End", ErrInvalidLayout)
	case a >= attribCount:
		l.err = fmt.Errorf("%w: unknown attribute %v", ErrInvalidLayout, a)
	case l.has[a]:
		l.err = fmt.Errorf("%w: duplicate attribute %v", ErrInvalidLayout, a)
	case num < 1 || num > 4:
		l.err = fmt.Errorf("%w: %v has %d components", ErrInvalidLayout, a, num)
	case typ > AttribFloat:
		l.err = fmt.Errorf("%w: %v has unknown type %d", ErrInvalidLayout, a, typ)
	}
	if l.err != nil {
		return l
	}
	l.attribs[a] = attribDecl{num: uint8(num), typ: typ, normalized: normalized, offset: l.stride}
	l.has[a] = true
	l.stride += uint16(num * typ.size())
	return l
}

// End finalizes the layout.
func (l *VertexLayout) End() *VertexLayout {
	if l.err == nil {
		switch {
		case !l.has[AttribPosition]:
			l.err = fmt.Errorf("%w: missing Position", ErrInvalidLayout)
		case l.attribs[AttribPosition].num != 2:
			l.err = fmt.Errorf("%w: Position must have 2 components", ErrInvalidLayout)
		}
	}
	l.ended = true
	return l
}

// Err returns the first error recorded while building the layout.
func (l *VertexLayout) Err() error {
	if l.err == nil && !l.ended {
		return fmt.Errorf("%w: End not called", ErrInvalidLayout)
	}
	return l.err
}

// Stride returns the size of one vertex in bytes.
func (l *VertexLayout) Stride() int { return int(l.stride) }

// Has reports whether the layout contains a.
func (l *VertexLayout) Has(a Attrib) bool { return a < attribCount && l.has[a] }

// Offset returns the byte offset of a within a vertex, or -1.
func (l *VertexLayout) Offset(a Attrib) int {
	if !l.Has(a) {
		return -1
	}
	return int(l.attribs[a].offset)
}

// decode reads up to 4 components of attribute a from one vertex. Missing
// components are left as in def.
func (l *VertexLayout) decode(vertex []byte, a Attrib, def [4]float32) [4]float32 {
	if !l.has[a] {
		return def
	}
	d := &l.attribs[a]
	out := def
	off := int(d.offset)
	for i := 0; i < int(d.num); i++ {
		switch d.typ {
		case AttribUint8:
			v := float32(vertex[off])
			if d.normalized {
				v /= 255
			}
			out[i] = v
			off++
		case AttribInt16:
			v := float32(int16(nativeEndian.Uint16(vertex[off:])))
			if d.normalized {
				v /= 32767
			}
			out[i] = v
			off += 2
		default:
			out[i] = float32frombytes(vertex[off:])
			off += 4
		}
	}
	return out
}

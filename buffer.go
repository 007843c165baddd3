package gfx

import "fmt"

// IndexBuffer is an immutable list of triangle indices.
type IndexBuffer struct {
	resourceBase
	indices []uint32
}

func (b *IndexBuffer) base() *resourceBase {
	if b == nil {
		return nil
	}
	return &b.resourceBase
}

// Len returns the number of indices.
func (b *IndexBuffer) Len() int { return len(b.indices) }

// DynamicVertexBuffer is a fixed-capacity vertex store updated from the CPU.
type DynamicVertexBuffer struct {
	resourceBase
	layout      VertexLayout
	data        []byte
	numVertices int
}

func (b *DynamicVertexBuffer) base() *resourceBase {
	if b == nil {
		return nil
	}
	return &b.resourceBase
}

// Cap returns the capacity in vertices.
func (b *DynamicVertexBuffer) Cap() int { return b.numVertices }

// Layout returns the vertex layout of the buffer.
func (b *DynamicVertexBuffer) Layout() *VertexLayout { return &b.layout }

// CreateIndexBuffer creates a static index buffer from 16-bit indices.
func (d *Device) CreateIndexBuffer(indices []uint16) (*IndexBuffer, error) {
	wide := make([]uint32, len(indices))
	for i, v := range indices {
		wide[i] = uint32(v)
	}
	return d.createIndexBuffer(wide)
}

// CreateIndexBuffer32 creates a static index buffer from 32-bit indices.
func (d *Device) CreateIndexBuffer32(indices []uint32) (*IndexBuffer, error) {
	return d.createIndexBuffer(append([]uint32(nil), indices...))
}

func (d *Device) createIndexBuffer(indices []uint32) (*IndexBuffer, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("gfx: create index buffer: %w", ErrEmptyBuffer)
	}
	b := &IndexBuffer{indices: indices}
	d.register(&b.resourceBase, kindIndexBuffer, "")
	b.release = func() { b.indices = nil }
	return b, nil
}

// CreateDynamicVertexBuffer allocates room for numVertices vertices of the
// given layout. The contents start zeroed.
func (d *Device) CreateDynamicVertexBuffer(numVertices int, layout *VertexLayout) (*DynamicVertexBuffer, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if layout == nil {
		return nil, fmt.Errorf("gfx: create dynamic vertex buffer: %w: nil layout", ErrInvalidLayout)
	}
	if err := layout.Err(); err != nil {
		return nil, fmt.Errorf("gfx: create dynamic vertex buffer: %w", err)
	}
	if numVertices <= 0 {
		return nil, fmt.Errorf("gfx: create dynamic vertex buffer: %w", ErrEmptyBuffer)
	}
	b := &DynamicVertexBuffer{
		layout:      *layout,
		data:        make([]byte, numVertices*layout.Stride()),
		numVertices: numVertices,
	}
	d.register(&b.resourceBase, kindDynamicVertexBuffer, "")
	b.release = func() { b.data = nil }
	return b, nil
}

// UpdateDynamicVertexBuffer copies mem into b starting at startVertex.
func (d *Device) UpdateDynamicVertexBuffer(b *DynamicVertexBuffer, startVertex int, mem Memory) error {
	if b == nil || b.destroyed {
		return fmt.Errorf("gfx: update dynamic vertex buffer: %w", ErrDestroyed)
	}
	stride := b.layout.Stride()
	if len(mem)%stride != 0 {
		return fmt.Errorf("gfx: update %v: %w (%d bytes, stride %d)", &b.resourceBase, ErrMisalignedData, len(mem), stride)
	}
	n := len(mem) / stride
	if startVertex < 0 || startVertex+n > b.numVertices {
		return fmt.Errorf("gfx: update %v: %w (vertices %d..%d, capacity %d)",
			&b.resourceBase, ErrBufferOverflow, startVertex, startVertex+n, b.numVertices)
	}
	copy(b.data[startVertex*stride:], mem)
	return nil
}

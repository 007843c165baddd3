package gfx

import "fmt"

type resourceKind uint8

const (
	kindIndexBuffer resourceKind = iota
	kindDynamicVertexBuffer
	kindTexture
	kindProgram
	kindUniform
)

func (k resourceKind) String() string {
	switch k {
	case kindIndexBuffer:
		return "index buffer"
	case kindDynamicVertexBuffer:
		return "dynamic vertex buffer"
	case kindTexture:
		return "texture"
	case kindProgram:
		return "program"
	case kindUniform:
		return "uniform"
	}
	return fmt.Sprintf("resourceKind(%d)", uint8(k))
}

// Resource is any object created by a Device and released with
// Device.Destroy.
type Resource interface {
	base() *resourceBase
}

type resourceBase struct {
	dev       *Device
	kind      resourceKind
	id        uint32
	name      string
	destroyed bool
	release   func()
}

// ID returns the device-unique id of the resource.
func (r *resourceBase) ID() uint32 { return r.id }

// Name returns the debug name of the resource.
func (r *resourceBase) Name() string { return r.name }

// Destroyed reports whether the resource has been released.
func (r *resourceBase) Destroyed() bool { return r.destroyed }

func (r *resourceBase) String() string {
	if r.name == "" {
		return fmt.Sprintf("%v #%d", r.kind, r.id)
	}
	return fmt.Sprintf("%v #%d (%s)", r.kind, r.id, r.name)
}

// register assigns an id and tracks r as live.
func (d *Device) register(r *resourceBase, kind resourceKind, name string) {
	d.nextID++
	r.dev = d
	r.kind = kind
	r.id = d.nextID
	r.name = name
	d.live[r] = struct{}{}
}

// Destroy releases r. Destroying nil is a no-op; destroying twice returns
// ErrDestroyed.
func (d *Device) Destroy(r Resource) error {
	if r == nil {
		return nil
	}
	b := r.base()
	if b == nil {
		return nil
	}
	if b.dev != d {
		return fmt.Errorf("%w: %v", ErrForeignResource, b)
	}
	if b.destroyed {
		return fmt.Errorf("%w: %v", ErrDestroyed, b)
	}
	d.release(b)
	return nil
}

func (d *Device) release(b *resourceBase) {
	if b.release != nil {
		b.release()
	}
	b.destroyed = true
	delete(d.live, b)
}

// LiveResources returns the number of resources not yet destroyed.
func (d *Device) LiveResources() int {
	return len(d.live)
}

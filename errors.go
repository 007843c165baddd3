package gfx

import "errors"

var (
	ErrNotInitialized         = errors.New("gfx: device not initialized")
	ErrAlreadyInitialized     = errors.New("gfx: device already initialized")
	ErrUnknownRenderer        = errors.New("gfx: unknown renderer type")
	ErrInvalidLayout          = errors.New("gfx: invalid vertex layout")
	ErrBufferOverflow         = errors.New("gfx: buffer overflow")
	ErrMisalignedData         = errors.New("gfx: data length is not a multiple of the vertex stride")
	ErrEmptyBuffer            = errors.New("gfx: empty buffer")
	ErrDestroyed              = errors.New("gfx: resource already destroyed")
	ErrForeignResource        = errors.New("gfx: resource belongs to another device")
	ErrUnsupportedVertexStage = errors.New("gfx: unsupported vertex stage")
	ErrInvalidUniformName     = errors.New("gfx: invalid uniform name")
	ErrUnsupportedFormat      = errors.New("gfx: unsupported image format")
)

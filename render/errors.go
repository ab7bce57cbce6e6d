package render

import "errors"

var (
	// ErrInvalidConfig marks configuration errors. They are reported at setup
	// and are fatal to pipeline initialization.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStaleTarget marks a render target sampled at a resolution other than
	// the active one.
	ErrStaleTarget = errors.New("stale render target")

	// ErrDisposed marks use of a resource after it was destroyed.
	ErrDisposed = errors.New("resource disposed")

	// ErrShaderCompile marks a program that failed to compile or link.
	ErrShaderCompile = errors.New("shader compilation failed")

	// ErrBackendMismatch marks a resource created by one backend and handed
	// to another.
	ErrBackendMismatch = errors.New("resource belongs to a different backend")
)

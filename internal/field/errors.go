package field

import "errors"

// Domain errors for the parallax field.
var (
	// ErrSurfaceUnavailable indicates the host could not provide a drawing surface.
	ErrSurfaceUnavailable = errors.New("field: drawing surface unavailable")

	// ErrInvalidViewport indicates a viewport with negative dimensions.
	ErrInvalidViewport = errors.New("field: invalid viewport (negative dimensions)")

	// ErrPermissionDenied indicates orientation sensor access was refused.
	ErrPermissionDenied = errors.New("field: orientation permission denied")

	// ErrPermissionUnsupported indicates the platform offers no orientation sensor.
	ErrPermissionUnsupported = errors.New("field: orientation sensor unsupported")

	// ErrInvalidConfig indicates a parameter outside its valid range.
	ErrInvalidConfig = errors.New("field: invalid configuration")
)

// FrameError wraps an error with frame context.
type FrameError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *FrameError) Error() string {
	return e.Wrapped.Error()
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}

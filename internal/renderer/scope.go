package renderer

import "github.com/san-kum/parallaxfield/internal/host"

// scope collects listener registrations so they can be released together,
// each exactly once.
type scope struct {
	h       host.Host
	cancels []func()
}

func newScope(h host.Host) *scope {
	return &scope{h: h}
}

func (s *scope) listen(k host.Kind, fn host.Handler) {
	s.cancels = append(s.cancels, s.h.Listen(k, fn))
}

// release removes listeners in reverse registration order.
func (s *scope) release() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
}

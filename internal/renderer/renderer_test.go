package renderer_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/render"
	"github.com/san-kum/parallaxfield/internal/renderer"
)

var desktop = field.Viewport{Width: 1280, Height: 800}

type brokenSurface struct {
	*render.Recorder
}

var errPaint = errors.New("paint failed")

func (brokenSurface) FillCircle(x, y, r float64, c field.Color) error { return errPaint }

func mount(h *host.Manual, opts ...renderer.Option) *renderer.Renderer {
	r, err := renderer.Mount(h, renderer.DefaultConfig(), append([]renderer.Option{renderer.WithSeed(11)}, opts...)...)
	Expect(err).ToNot(HaveOccurred())
	return r
}

var _ = Describe("Renderer", func() {
	var h *host.Manual

	BeforeEach(func() {
		h = host.NewManual(desktop)
	})

	Describe("Mount", func() {
		It("attaches input listeners and schedules a frame", func() {
			r := mount(h)
			Expect(r.State()).To(Equal(renderer.Running))
			Expect(h.Listeners(host.KindPointerMove)).To(Equal(1))
			Expect(h.Listeners(host.KindTouchStart)).To(Equal(2))
			Expect(h.Listeners(host.KindTouchMove)).To(Equal(1))
			Expect(h.Listeners(host.KindTouchEnd)).To(Equal(1))
			Expect(h.Listeners(host.KindResize)).To(Equal(1))
			Expect(h.Listeners(host.KindClick)).To(Equal(1))
			Expect(h.PendingFrames()).To(Equal(1))
			Expect(h.PermissionRequests()).To(Equal(1))
		})

		It("builds a full scene on wide viewports", func() {
			r := mount(h)
			Expect(r.Scene().Class).To(Equal(field.Full))
			Expect(r.Scene().Stars).To(HaveLen(700))
			Expect(r.Scene().Shapes).To(HaveLen(3))
		})

		It("builds a reduced scene on narrow viewports", func() {
			h = host.NewManual(field.Viewport{Width: 390, Height: 844})
			r := mount(h)
			h.Tick()

			rec := r.Surface().(*render.Recorder)
			Expect(r.Scene().Shapes).To(BeEmpty())
			Expect(rec.Count(render.CmdRect)).To(Equal(120))
			Expect(rec.Count(render.CmdCircle)).To(BeZero())
		})

		Context("when the host has no surface", func() {
			var (
				boom = errors.New("no 2d context")
				r    *renderer.Renderer
				err  error
			)

			BeforeEach(func() {
				h = host.NewManual(desktop, host.WithSurfaceError(boom))
				r, err = renderer.Mount(h, renderer.DefaultConfig())
			})

			It("returns an inert renderer", func() {
				Expect(err).To(MatchError(field.ErrSurfaceUnavailable))
				Expect(errors.Is(err, boom)).To(BeTrue())
				Expect(r).ToNot(BeNil())
				Expect(r.State()).To(Equal(renderer.Stopped))
				Expect(r.Scene()).To(BeNil())
			})

			It("attaches nothing and never draws", func() {
				Expect(h.ListenerCount()).To(BeZero())
				Expect(h.PendingFrames()).To(BeZero())
				Expect(h.PermissionRequests()).To(BeZero())
				Expect(h.Run(5)).To(BeZero())
			})

			It("names the sentinel once when the host already returns it", func() {
				h = host.NewManual(desktop, host.WithSurfaceError(field.ErrSurfaceUnavailable))
				_, err := renderer.Mount(h, renderer.DefaultConfig())
				Expect(err).To(MatchError(field.ErrSurfaceUnavailable))
				Expect(strings.Count(err.Error(), field.ErrSurfaceUnavailable.Error())).To(Equal(1))
			})

			It("tears down without effect", func() {
				Expect(r.Teardown).ToNot(Panic())
				Expect(r.State()).To(Equal(renderer.Stopped))
			})
		})

		It("rejects an invalid viewport", func() {
			h = host.NewManual(field.Viewport{Width: -1, Height: 10})
			r, err := renderer.Mount(h, renderer.DefaultConfig())
			Expect(err).To(MatchError(field.ErrInvalidViewport))
			Expect(r.State()).To(Equal(renderer.Stopped))
			Expect(h.ListenerCount()).To(BeZero())
		})
	})

	Describe("frame loop", func() {
		It("steps, draws and reports each frame", func() {
			var frames []renderer.FrameStats
			r := mount(h, renderer.WithObserver(renderer.ObserverFunc(func(s renderer.FrameStats) {
				frames = append(frames, s)
			})))

			Expect(h.Run(3)).To(Equal(3))
			Expect(frames).To(HaveLen(3))
			Expect(frames[2].Frame).To(Equal(3))
			Expect(frames[2].Time).To(BeNumerically("~", 0.012, 1e-12))
			Expect(frames[2].Stars).To(Equal(700))
			Expect(frames[2].Segments).To(Equal(45))

			rec := r.Surface().(*render.Recorder)
			Expect(rec.Clears).To(Equal(3))
			Expect(rec.Count(render.CmdCircle)).To(Equal(700))
		})

		It("is deterministic for a seed", func() {
			other := host.NewManual(desktop)
			a := mount(h)
			b := mount(other)
			h.Run(50)
			other.Run(50)
			Expect(a.Scene().Stars).To(Equal(b.Scene().Stars))
			Expect(a.Scene().Shapes).To(Equal(b.Scene().Shapes))
		})

		It("eases toward the pointer", func() {
			r := mount(h)
			h.Dispatch(host.PointerMove{X: 1280, Y: 800})
			h.Tick()
			x, y := r.Tilt()
			Expect(x).To(BeNumerically("~", 0.05, 1e-12))
			Expect(y).To(BeNumerically("~", 0.05, 1e-12))

			h.Run(200)
			x, _ = r.Tilt()
			Expect(x).To(BeNumerically(">", 0.99))
			Expect(r.Last().TargetX).To(Equal(1.0))
		})

		It("recenters after a swipe ends", func() {
			r := mount(h)
			h.Dispatch(host.TouchStart{X: 640, Y: 400})
			h.Dispatch(host.TouchMove{X: 960, Y: 400})
			h.Tick()
			Expect(r.Last().TargetX).To(BeNumerically("~", 0.5, 1e-12))

			h.Dispatch(host.TouchEnd{})
			h.Tick()
			Expect(r.Last().TargetX).To(BeZero())
		})

		It("resizes the surface and keeps the scene", func() {
			r := mount(h)
			h.Run(2)
			before := append([]field.Star(nil), r.Scene().Stars...)

			h.SetViewport(field.Viewport{Width: 1920, Height: 1080})
			Expect(r.Surface().Size()).To(Equal(field.Viewport{Width: 1920, Height: 1080}))
			Expect(r.Scene().Stars).To(Equal(before))
			Expect(r.Scene().Class).To(Equal(field.Full))
		})

		It("records draw errors and keeps running", func() {
			h = host.NewManual(desktop, host.WithSurface(func(vp field.Viewport) (render.Surface, error) {
				return brokenSurface{render.NewRecorder(vp.Width, vp.Height)}, nil
			}))
			r := mount(h)
			h.Run(2)

			var ferr *field.FrameError
			Expect(errors.As(r.Err(), &ferr)).To(BeTrue())
			Expect(ferr.Frame).To(Equal(2))
			Expect(ferr).To(MatchError(errPaint))
			Expect(r.State()).To(Equal(renderer.Running))
			Expect(h.PendingFrames()).To(Equal(1))
		})
	})

	Describe("orientation", func() {
		It("attaches when no permission is required", func() {
			r := mount(h)
			h.Tick()
			Expect(r.Gate().State()).To(Equal(input.GateGranted))
			Expect(h.Listeners(host.KindOrientation)).To(Equal(1))
			Expect(r.Last().Orientation).To(BeTrue())

			h.Dispatch(host.Tilt(22.5, 67.5))
			h.Tick()
			Expect(r.Last().TargetX).To(BeNumerically("~", 0.5, 1e-12))
			Expect(r.Last().TargetY).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("ignores malformed readings", func() {
			r := mount(h)
			h.Tick()
			h.Dispatch(host.Tilt(45, 45))
			h.Dispatch(host.Orientation{})
			h.Tick()
			Expect(r.Last().TargetX).To(Equal(1.0))
		})

		It("falls back to pointer input when denied", func() {
			h = host.NewManual(desktop, host.WithPolicy(host.PolicyDenied))
			r := mount(h)
			h.Tick()
			h.Dispatch(host.Click{})
			h.Tick()

			Expect(r.Gate().State()).To(Equal(input.GateFailed))
			Expect(r.Gate().Attempts()).To(Equal(2))
			Expect(h.Listeners(host.KindOrientation)).To(BeZero())
			Expect(h.Dispatch(host.Tilt(45, 90))).To(BeZero())
			Expect(r.State()).To(Equal(renderer.Running))
		})

		It("retries on the first gesture", func() {
			h = host.NewManual(desktop, host.WithPolicy(host.PolicyGesture))
			r := mount(h)
			h.Tick()
			Expect(r.Gate().State()).To(Equal(input.GateFailed))

			h.Dispatch(host.TouchStart{X: 10, Y: 10})
			Expect(h.Listeners(host.KindClick)).To(BeZero())
			Expect(h.Listeners(host.KindTouchStart)).To(Equal(1))
			h.Tick()

			Expect(r.Gate().State()).To(Equal(input.GateGranted))
			Expect(h.Listeners(host.KindOrientation)).To(Equal(1))

			h.Dispatch(host.Click{})
			Expect(h.PermissionRequests()).To(Equal(2))
		})

		It("stays silent when the sensor is missing", func() {
			h = host.NewManual(desktop, host.WithPolicy(host.PolicyUnsupported))
			r := mount(h)
			h.Tick()
			Expect(errors.Is(r.Gate().Err(), field.ErrPermissionUnsupported)).To(BeTrue())
			Expect(h.Listeners(host.KindOrientation)).To(BeZero())
		})
	})

	Describe("Teardown", func() {
		It("releases every listener and the pending frame", func() {
			r := mount(h)
			h.Tick()
			Expect(h.ListenerCount()).To(BeNumerically(">", 0))

			r.Teardown()
			Expect(r.State()).To(Equal(renderer.Stopped))
			Expect(h.ListenerCount()).To(BeZero())
			Expect(h.PendingFrames()).To(BeZero())
			Expect(h.Run(3)).To(BeZero())
		})

		It("is idempotent", func() {
			r := mount(h)
			r.Teardown()
			r.Teardown()
			Expect(h.ListenerCount()).To(BeZero())
		})

		It("drops a permission answer that arrives afterwards", func() {
			r := mount(h)
			r.Teardown()
			h.Tick()
			Expect(h.Listeners(host.KindOrientation)).To(BeZero())
			Expect(r.Gate().State()).To(Equal(input.GatePending))
		})

		It("can be called from an observer", func() {
			var r *renderer.Renderer
			r = mount(h, renderer.WithObserver(renderer.ObserverFunc(func(s renderer.FrameStats) {
				if s.Frame == 2 {
					r.Teardown()
				}
			})))
			Expect(h.Run(5)).To(Equal(2))
			Expect(h.PendingFrames()).To(BeZero())
		})
	})
})

package input_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/input"
)

// platform queues permission answers until flush, like a promise.
type platform struct {
	answers []input.Permission
	pending []func(input.Permission, error)
	calls   int
	fail    error
}

func (p *platform) request(done func(input.Permission, error)) {
	p.calls++
	p.pending = append(p.pending, done)
}

func (p *platform) flush() {
	pending := p.pending
	p.pending = nil
	for _, done := range pending {
		answer := input.PermissionDenied
		if len(p.answers) > 0 {
			answer, p.answers = p.answers[0], p.answers[1:]
		}
		done(answer, p.fail)
	}
}

var _ = Describe("Gate", func() {
	var (
		plat   *platform
		grants int
		gate   *input.Gate
	)

	BeforeEach(func() {
		plat = &platform{}
		grants = 0
		gate = input.NewGate(plat.request, func() { grants++ })
	})

	It("starts idle", func() {
		Expect(gate.State()).To(Equal(input.GateIdle))
		Expect(gate.Attempts()).To(BeZero())
		Expect(gate.Gestured()).To(BeFalse())
	})

	Context("when the platform has no permission API", func() {
		BeforeEach(func() {
			plat.answers = []input.Permission{input.PermissionNotRequired}
		})

		It("attaches after the eager attempt", func() {
			gate.Attempt()
			Expect(gate.State()).To(Equal(input.GatePending))
			plat.flush()
			Expect(gate.State()).To(Equal(input.GateGranted))
			Expect(grants).To(Equal(1))
		})

		It("does not retry on gesture once granted", func() {
			gate.Attempt()
			plat.flush()
			Expect(gate.Gesture()).To(BeFalse())
			Expect(plat.calls).To(Equal(1))
			Expect(grants).To(Equal(1))
		})
	})

	Context("when access needs a user gesture", func() {
		BeforeEach(func() {
			plat.answers = []input.Permission{input.PermissionDenied, input.PermissionGranted}
		})

		It("retries once on the first gesture", func() {
			gate.Attempt()
			plat.flush()
			Expect(gate.State()).To(Equal(input.GateFailed))
			Expect(gate.Err()).To(MatchError(field.ErrPermissionDenied))

			Expect(gate.Gesture()).To(BeTrue())
			Expect(gate.Gestured()).To(BeTrue())
			plat.flush()
			Expect(gate.State()).To(Equal(input.GateGranted))
			Expect(grants).To(Equal(1))
			Expect(gate.Err()).ToNot(HaveOccurred())
		})

		It("stops retrying after the first gesture", func() {
			gate.Attempt()
			plat.flush()
			gate.Gesture()
			Expect(gate.Gesture()).To(BeFalse())
			Expect(gate.Gesture()).To(BeFalse())
			Expect(plat.calls).To(Equal(2))
		})

		It("ignores repeated eager attempts", func() {
			gate.Attempt()
			gate.Attempt()
			Expect(plat.calls).To(Equal(1))
		})
	})

	Context("when access is always refused", func() {
		It("falls back silently after two attempts", func() {
			gate.Attempt()
			plat.flush()
			gate.Gesture()
			plat.flush()
			Expect(gate.State()).To(Equal(input.GateFailed))
			Expect(gate.Attempts()).To(Equal(2))
			Expect(grants).To(BeZero())
		})

		It("records request errors", func() {
			plat.fail = errors.New("sensor busy")
			plat.answers = []input.Permission{input.PermissionGranted}
			gate.Attempt()
			plat.flush()
			Expect(gate.State()).To(Equal(input.GateFailed))
			Expect(gate.Err()).To(MatchError("sensor busy"))
			Expect(grants).To(BeZero())
		})
	})

	Context("when both requests are in flight", func() {
		It("grants only once", func() {
			plat.answers = []input.Permission{input.PermissionGranted, input.PermissionGranted}
			gate.Attempt()
			gate.Gesture()
			plat.flush()
			Expect(grants).To(Equal(1))
			Expect(gate.State()).To(Equal(input.GateGranted))
		})
	})

	It("drops answers after close", func() {
		plat.answers = []input.Permission{input.PermissionGranted}
		gate.Attempt()
		gate.Close()
		plat.flush()
		Expect(grants).To(BeZero())
		Expect(gate.Gesture()).To(BeFalse())
	})

	It("treats a missing requester as unsupported", func() {
		g := input.NewGate(nil, func() { grants++ })
		g.Attempt()
		Expect(g.State()).To(Equal(input.GateFailed))
		Expect(errors.Is(g.Err(), field.ErrPermissionUnsupported)).To(BeTrue())
	})
})

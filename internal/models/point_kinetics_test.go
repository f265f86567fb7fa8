package models_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/integrators"
	"github.com/san-kum/reactorlab/internal/models"
)

func runKinetics(pk *models.PointKinetics, dt, duration float64) *dynamo.Result {
	s := dynamo.New(pk, integrators.NewEuler(), zeroInput{})
	res, err := s.Run(context.Background(), pk.InitialState(), dynamo.Config{Dt: dt, Duration: duration, ValidateState: true})
	Expect(err).NotTo(HaveOccurred())
	return res
}

type zeroInput struct{}

func (zeroInput) Compute(x dynamo.State, t float64) dynamo.Control { return dynamo.Control{0} }

var _ = Describe("PointKinetics", func() {
	var pk *models.PointKinetics

	BeforeEach(func() {
		pk = models.NewPointKinetics()
	})

	It("uses the reference parameters by default", func() {
		Expect(pk.N0).To(Equal(1e10))
		Expect(pk.Rho).To(Equal(0.005))
		Expect(pk.Beta).To(Equal(0.0065))
		Expect(pk.Lambda).To(Equal(0.08))
		Expect(pk.Validate()).To(Succeed())
	})

	It("starts the precursors at N0*beta/lambda", func() {
		x0 := pk.InitialState()
		Expect(x0).To(HaveLen(2))
		Expect(x0[0]).To(Equal(pk.N0))
		Expect(x0[1]).To(BeNumerically("~", pk.N0*pk.Beta/pk.Lambda, 1e-3))
	})

	It("is stationary at zero reactivity", func() {
		pk.Rho = 0
		dx := pk.Derive(pk.InitialState(), dynamo.Control{0}, 0)
		Expect(dx[0]).To(BeNumerically("~", 0, 1e-3))
		Expect(dx[1]).To(BeNumerically("~", 0, 1e-3))
		Expect(math.IsInf(pk.Period(pk.InitialState()), 1) || math.Abs(pk.Period(pk.InitialState())) > 1e12).To(BeTrue())
	})

	It("adds inserted reactivity to the static value", func() {
		x := pk.InitialState()
		withRod := pk.Derive(x, dynamo.Control{-0.005}, 0)
		pk.Rho = 0
		without := pk.Derive(x, nil, 0)
		Expect(withRod[0]).To(BeNumerically("~", without[0], 1e-3))
	})

	It("reproduces the same sequence on repeated runs", func() {
		a := runKinetics(pk, 0.01, 10)
		b := runKinetics(models.NewPointKinetics(), 0.01, 10)

		Expect(a.States).To(HaveLen(1001))
		Expect(b.States).To(HaveLen(len(a.States)))
		for i := range a.States {
			Expect(b.States[i][0]).To(Equal(a.States[i][0]))
			Expect(b.States[i][1]).To(Equal(a.States[i][1]))
		}
	})

	It("follows the explicit Euler recurrence step by step", func() {
		res := runKinetics(pk, 0.01, 0.05)
		n, c := pk.InitialState()[0], pk.InitialState()[1]
		for i := 1; i < len(res.States); i++ {
			dn := (pk.Rho-pk.Beta)*n + pk.Lambda*c
			dc := pk.Beta*n - pk.Lambda*c
			n, c = n+0.01*dn, c+0.01*dc
			Expect(res.States[i][0]).To(Equal(n))
			Expect(res.States[i][1]).To(Equal(c))
		}
	})

	It("grows under positive sub-prompt reactivity", func() {
		res := runKinetics(pk, 0.01, 10)
		final := res.Final()
		Expect(final[0]).To(BeNumerically(">", pk.N0))
		Expect(final[1]).To(BeNumerically(">", 0))
	})

	It("decays when reactivity is negative", func() {
		pk.Rho = -0.01
		res := runKinetics(pk, 0.01, 10)
		Expect(res.Final()[0]).To(BeNumerically("<", pk.N0))
		Expect(pk.Period(res.Final())).To(BeNumerically("<", 0))
	})

	It("rejects unphysical parameters", func() {
		pk.Beta = 0
		Expect(errors.Is(pk.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())
		pk.Beta = 0.0065
		pk.Lambda = -1
		Expect(errors.Is(pk.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())
		pk.Lambda = 0.08
		pk.GenerationTime = 0
		Expect(pk.Validate()).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("exposes its parameters for tuning", func() {
		Expect(pk.SetParam("rho", 0.001)).To(Succeed())
		Expect(pk.GetParams()).To(HaveKeyWithValue("rho", 0.001))
		Expect(pk.Dollars()).To(BeNumerically("~", 0.001/0.0065, 1e-12))
		Expect(errors.Is(pk.SetParam("tau", 1), dynamo.ErrUnknownParam)).To(BeTrue())
	})
})

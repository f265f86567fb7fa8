package models_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/integrators"
	"github.com/san-kum/reactorlab/internal/models"
)

var _ = Describe("DoublePendulum", func() {
	var dp *models.DoublePendulum

	BeforeEach(func() {
		dp = models.NewDoublePendulum()
	})

	It("has four state components and no input", func() {
		Expect(dp.StateDim()).To(Equal(4))
		Expect(dp.ControlDim()).To(Equal(0))
	})

	It("rests at the hanging equilibrium", func() {
		dx := dp.Derive(dynamo.State{0, 0, 0, 0}, nil, 0)
		for _, v := range dx {
			Expect(v).To(BeNumerically("~", 0, 1e-12))
		}
	})

	It("mirrors accelerations for mirrored angles", func() {
		a := dp.Derive(dynamo.State{0.1, 0.1, 0, 0}, nil, 0)
		b := dp.Derive(dynamo.State{-0.1, -0.1, 0, 0}, nil, 0)
		Expect(a[2] + b[2]).To(BeNumerically("~", 0, 1e-12))
		Expect(a[3] + b[3]).To(BeNumerically("~", 0, 1e-12))
	})

	It("accelerates the inner bob at g/L when both arms are horizontal", func() {
		dx := dp.Derive(dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0}, nil, 0)
		// both arms aligned: the outer mass hangs off the inner one in free fall
		Expect(dx[2]).To(BeNumerically("~", -dp.Gravity/dp.L1, 1e-9))
		Expect(dx[3]).To(BeNumerically("~", 0, 1e-9))
	})

	It("places the bobs in Cartesian space", func() {
		b := dp.Positions(dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0})
		Expect(b.X1).To(BeNumerically("~", 1, 1e-12))
		Expect(b.Y1).To(BeNumerically("~", 0, 1e-12))
		Expect(b.X2).To(BeNumerically("~", 2, 1e-12))
		Expect(b.Y2).To(BeNumerically("~", 0, 1e-12))

		b = dp.Positions(dynamo.State{0, 0, 0, 0})
		Expect(b.Y2).To(BeNumerically("~", -dp.Reach(), 1e-12))
	})

	It("conserves energy under RK4 with a small step", func() {
		x := dynamo.State{math.Pi / 3, math.Pi / 2, 0, 0}
		e0 := dp.Energy(x)
		Expect(e0).To(BeNumerically("~", -dp.Gravity, 1e-9))
		rk4 := integrators.NewRK4()
		for i := 0; i < 2000; i++ {
			x = rk4.Step(dp, x, nil, float64(i)*0.001, 0.001)
		}
		Expect(math.Abs(dp.Energy(x)-e0) / math.Abs(e0)).To(BeNumerically("<", 1e-6))
	})

	It("reports a nonzero energy scale for a level start", func() {
		x := dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0}
		Expect(dp.Energy(x)).To(BeNumerically("~", 0, 1e-9))
		Expect(dp.EnergyScale()).To(BeNumerically("~", 3*dp.Gravity, 1e-12))
		Expect(dynamo.DriftReference(dp, dp.Energy(x))).To(Equal(dp.EnergyScale()))
	})

	It("validates its geometry", func() {
		Expect(dp.Validate()).To(Succeed())
		dp.L2 = 0
		Expect(errors.Is(dp.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())
	})

	It("tunes parameters by name", func() {
		Expect(dp.SetParam("m2", 2)).To(Succeed())
		Expect(dp.M2).To(Equal(2.0))
		Expect(dp.SetParam("length", 2)).To(MatchError(dynamo.ErrUnknownParam))
	})
})

package sim_test

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"math/rand"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/score"
	"github.com/san-kum/dnamc/internal/sim"
	"github.com/san-kum/dnamc/internal/steps"
)

var _ = Describe("Simulator", func() {
	var (
		sampler *steps.Gaussian
		rng     *rand.Rand
	)

	BeforeEach(func() {
		var err error
		sampler, err = steps.LoadGaussian(steps.DefaultGaussian)
		Expect(err).NotTo(HaveOccurred())
		rng = rand.New(rand.NewSource(7))
	})

	chain := func(n int) *helix.Chain {
		c, err := helix.New(n, sampler.Average())
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Context("without a score functional", func() {
		It("accepts every trial and records one terminal per sweep", func() {
			cfg := sim.Config{NumStep: 1000}
			res, err := sim.New(chain(2), sampler, score.Tweezers{}, rng, cfg).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Accepted).To(Equal(1000))
			Expect(res.AcceptRate()).To(Equal(1.0))
			Expect(res.Coords).To(HaveLen(1000))
			Expect(res.Frames).To(HaveLen(1000))
			Expect(res.Twist).To(BeNil())
			Expect(res.Writhe).To(BeNil())
			for _, f := range res.Frames {
				Expect(f.IsOrthonormal(1e-9)).To(BeTrue())
			}
		})
	})

	Context("with a stretching force only", func() {
		It("uses the final functional throughout and skips the ramp", func() {
			final := score.Tweezers{Force: 2}
			s := sim.New(chain(20), sampler, final, rng, sim.Config{NumStep: 50, RelaxStep: 10})
			Expect(s.LinkConstrained()).To(BeFalse())
			Expect(s.PreRun()).To(Equal(final))

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ramp).To(BeNil())
			Expect(res.AcceptRate()).To(And(BeNumerically(">", 0), BeNumerically("<=", 1)))
		})

		It("stretches the chain along +z", func() {
			res, err := sim.New(chain(30), sampler, score.Tweezers{Force: 20}, rng,
				sim.Config{NumStep: 200, RelaxStep: 50}).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			mean := 0.0
			for _, c := range res.Coords {
				mean += c.Z
			}
			mean /= float64(len(res.Coords))
			Expect(mean).To(BeNumerically(">", 0.8*29*3.33))
		})
	})

	Context("with a torsional trap", func() {
		It("ramps the trap center monotonically onto the target", func() {
			c := chain(30)
			c.SetTrackTopology(true)
			lk0, err := c.LinkFuller()
			Expect(err).NotTo(HaveOccurred())
			c.SetTrackTopology(false)

			target := lk0 + 3
			final := score.Tweezers{Force: 1, TorsionalStiffness: 1000}.WithTarget(target)
			s := sim.New(c, sampler, final, rng, sim.Config{
				NumStep:       10,
				RelaxStep:     10,
				LinkRelaxStep: 20,
				Writhe:        sim.WritheFuller,
			})
			Expect(s.LinkConstrained()).To(BeTrue())
			Expect(s.PreRun().Trapped()).To(BeFalse())

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ramp).NotTo(BeNil())

			ramp := res.Ramp
			Expect(ramp.Adjustments).To(BeNumerically(">=", 1))
			Expect(ramp.Centers).To(HaveLen(ramp.Adjustments + 1))
			for i := 1; i < len(ramp.Centers); i++ {
				Expect(ramp.Centers[i]).To(BeNumerically(">", ramp.Centers[i-1]))
			}
			last := ramp.Centers[len(ramp.Centers)-1]
			Expect(math.Abs(last - target)).To(BeNumerically("<=", ramp.Cutoff))
			Expect(math.Abs(ramp.FinalLink - target)).To(BeNumerically("<=", ramp.Cutoff))

			Expect(res.Twist).To(HaveLen(10))
			Expect(res.Writhe).To(HaveLen(10))
		})
	})

	Context("in writhe check mode", func() {
		It("writes two writhe values per sweep and records nothing else", func() {
			var buf bytes.Buffer
			s := sim.New(chain(10), sampler, score.Tweezers{Force: 1}, rng, sim.Config{NumStep: 25}).WithCheck(&buf)

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Coords).To(BeEmpty())

			lines := 0
			sc := bufio.NewScanner(&buf)
			for sc.Scan() {
				fields := strings.Fields(sc.Text())
				Expect(fields).To(HaveLen(2))
				for _, f := range fields {
					_, err := strconv.ParseFloat(f, 64)
					Expect(err).NotTo(HaveOccurred())
				}
				lines++
			}
			Expect(lines).To(Equal(25))
		})
	})
})

package helix

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var bform = Params{0, 0, 3.4, 0, 0, deg(36)}

func near(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) < tol
}

func TestNewStraightChain(t *testing.T) {
	c, err := New(11, bform)
	if err != nil {
		t.Fatal(err)
	}
	if c.NumSteps() != 10 || c.NumBasePairs() != 11 {
		t.Fatalf("got %d steps, %d bp", c.NumSteps(), c.NumBasePairs())
	}
	if !near(c.TerminalCoordinate(), r3.Vec{Z: 34}, 1e-9) {
		t.Errorf("terminal = %+v, want z=34", c.TerminalCoordinate())
	}
	if !c.TerminalFrame().IsOrthonormal(1e-9) {
		t.Error("terminal frame not orthonormal")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(0, bform); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	c, err := New(1, bform)
	if err != nil {
		t.Fatal(err)
	}
	if c.NumSteps() != 0 {
		t.Errorf("single bp chain has %d steps", c.NumSteps())
	}
}

func TestTrialRollbackRestoresState(t *testing.T) {
	c, _ := New(20, bform)
	c.SetTrackTopology(true)
	before := c.TerminalCoordinate()
	lkBefore, _ := c.LinkFuller()

	p := bform
	p[Roll] = deg(25)
	if err := c.StageTrial(5, p); err != nil {
		t.Fatal(err)
	}
	if near(c.TerminalCoordinate(), before, 1e-9) {
		t.Error("staged trial did not move the terminus")
	}
	if err := c.RollbackTrial(); err != nil {
		t.Fatal(err)
	}
	if !near(c.TerminalCoordinate(), before, 1e-12) {
		t.Errorf("rollback: terminal %+v, want %+v", c.TerminalCoordinate(), before)
	}
	lk, _ := c.LinkFuller()
	if lk != lkBefore {
		t.Errorf("rollback: link %f, want %f", lk, lkBefore)
	}
	if c.Step(5) != bform {
		t.Error("rollback left the trial parameters in place")
	}
}

func TestTrialCommitKeepsStagedState(t *testing.T) {
	c, _ := New(20, bform)
	p := bform
	p[Tilt] = deg(-12)
	if err := c.StageTrial(3, p); err != nil {
		t.Fatal(err)
	}
	staged := c.TerminalCoordinate()
	stagedFrame := c.TerminalFrame()
	if err := c.CommitTrial(); err != nil {
		t.Fatal(err)
	}
	if c.TerminalCoordinate() != staged || c.TerminalFrame() != stagedFrame {
		t.Error("commit changed the staged conformation")
	}
	if c.Step(3) != p {
		t.Error("commit lost the trial parameters")
	}

	// the next trial starts from the committed state
	if err := c.StageTrial(4, bform); err != nil {
		t.Fatal(err)
	}
	c.RollbackTrial()
	if c.TerminalCoordinate() != staged {
		t.Error("second trial corrupted the committed state")
	}
}

func TestTrialProtocolErrors(t *testing.T) {
	c, _ := New(5, bform)

	if err := c.CommitTrial(); !errors.Is(err, ErrNoTrial) {
		t.Errorf("commit without trial: %v", err)
	}
	if err := c.RollbackTrial(); !errors.Is(err, ErrNoTrial) {
		t.Errorf("rollback without trial: %v", err)
	}
	if err := c.StageTrial(4, bform); !errors.Is(err, ErrStepIndex) {
		t.Errorf("out of range: %v", err)
	}
	if err := c.StageTrial(0, Params{math.NaN()}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("NaN params: %v", err)
	}
	if err := c.StageTrial(0, bform); err != nil {
		t.Fatal(err)
	}
	if err := c.StageTrial(1, bform); !errors.Is(err, ErrTrialPending) {
		t.Errorf("second trial: %v", err)
	}
	if err := c.Update(1, bform); !errors.Is(err, ErrTrialPending) {
		t.Errorf("update during trial: %v", err)
	}
	if i, ok := c.Pending(); !ok || i != 0 {
		t.Errorf("Pending() = %d, %v", i, ok)
	}
}

func TestTopologyRequiresTracking(t *testing.T) {
	c, _ := New(5, bform)
	if _, err := c.Twist(); !errors.Is(err, ErrTopologyDisabled) {
		t.Errorf("Twist: %v", err)
	}
	if _, err := c.LinkFuller(); !errors.Is(err, ErrTopologyDisabled) {
		t.Errorf("LinkFuller: %v", err)
	}
	if _, err := c.WritheExact(); !errors.Is(err, ErrTopologyDisabled) {
		t.Errorf("WritheExact: %v", err)
	}
	if _, err := c.LinkExact(); !errors.Is(err, ErrTopologyDisabled) {
		t.Errorf("LinkExact: %v", err)
	}
}

func TestStraightChainTopology(t *testing.T) {
	c, _ := New(31, bform)
	c.SetTrackTopology(true)

	tw, _ := c.Twist()
	if math.Abs(tw-30*deg(36)) > 1e-9 {
		t.Errorf("twist = %f, want %f", tw, 30*deg(36))
	}
	wrF, _ := c.WritheFuller()
	wrE, _ := c.WritheExact()
	if math.Abs(wrF) > 1e-9 || math.Abs(wrE) > 1e-9 {
		t.Errorf("straight chain writhe: fuller %g exact %g", wrF, wrE)
	}
	lk, _ := c.LinkFuller()
	if math.Abs(lk-tw) > 1e-9 {
		t.Errorf("link %f != twist %f", lk, tw)
	}
}

func TestPlanarBendHasNoWrithe(t *testing.T) {
	p := Params{Rise: 3.4, Roll: deg(6)}
	c, _ := New(25, p)
	c.SetTrackTopology(true)

	wrF, _ := c.WritheFuller()
	wrE, _ := c.WritheExact()
	if math.Abs(wrF) > 1e-9 {
		t.Errorf("fuller writhe = %g, want 0", wrF)
	}
	if math.Abs(wrE) > 1e-6 {
		t.Errorf("exact writhe = %g, want 0", wrE)
	}
}

func TestSuperhelixWritheAgrees(t *testing.T) {
	var prevF, prevE float64
	for _, roll := range []float64{2, 4, 6} {
		c, _ := New(60, Params{Rise: 3.4, Roll: deg(roll), Twist: deg(34)})
		c.SetTrackTopology(true)

		wrF, _ := c.WritheFuller()
		wrE, _ := c.WritheExact()
		if wrF == 0 || wrE == 0 || wrF*wrE < 0 {
			t.Fatalf("roll %g: fuller %g and exact %g differ in sign", roll, wrF, wrE)
		}
		if math.Abs(wrF-wrE) > 0.15*math.Abs(wrE) {
			t.Errorf("roll %g: fuller %g, exact %g", roll, wrF, wrE)
		}
		if math.Abs(wrF) <= math.Abs(prevF) || math.Abs(wrE) <= math.Abs(prevE) {
			t.Errorf("roll %g: writhe did not grow (fuller %g -> %g, exact %g -> %g)",
				roll, prevF, wrF, prevE, wrE)
		}
		prevF, prevE = wrF, wrE

		tw, _ := c.Twist()
		lk, err := c.LinkExact()
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(lk-(tw+wrE)) > 1e-12 {
			t.Errorf("roll %g: exact link %g, want %g", roll, lk, tw+wrE)
		}
	}
}

func TestMeasureRecoversSteps(t *testing.T) {
	c, _ := New(12, bform)
	steps := map[int]Params{
		1:  {0.3, -0.2, 3.2, deg(3), deg(-5), deg(33)},
		4:  {-0.5, 0.1, 3.5, deg(-7), deg(9), deg(40)},
		10: {0, 0, 3.3, 0, deg(4), deg(-20)},
	}
	for i, p := range steps {
		if err := c.Update(i, p); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < c.NumSteps(); i++ {
		got, err := c.Measure(i)
		if err != nil {
			t.Fatal(err)
		}
		want := c.Step(i)
		for k := range got {
			if math.Abs(got[k]-want[k]) > 1e-9 {
				t.Errorf("step %d: measured %v, stored %v", i, got, want)
				break
			}
		}
	}
	if _, err := c.Measure(c.NumSteps()); !errors.Is(err, ErrStepIndex) {
		t.Errorf("expected ErrStepIndex, got %v", err)
	}
}

func TestTrackingCatchesUp(t *testing.T) {
	c, _ := New(10, bform)
	p := bform
	p[Tilt] = deg(20)
	c.Update(2, p)
	c.Update(6, p)

	c.SetTrackTopology(true)
	wr, _ := c.WritheFuller()
	if wr != fullerWrithe(c.committed.frames) {
		t.Error("enabling tracking did not refresh the cached writhe")
	}
}

func TestSaveLoad(t *testing.T) {
	c, _ := New(8, bform)
	p := Params{0.3, -0.2, 3.2, deg(3), deg(-5), deg(33)}
	c.Update(4, p)

	path := filepath.Join(t.TempDir(), "chain.csv")
	if err := c.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.NumSteps() != c.NumSteps() {
		t.Fatalf("loaded %d steps, want %d", got.NumSteps(), c.NumSteps())
	}
	if !near(got.TerminalCoordinate(), c.TerminalCoordinate(), 1e-6) {
		t.Errorf("terminal %+v, want %+v", got.TerminalCoordinate(), c.TerminalCoordinate())
	}
}

func TestSaveDuringTrial(t *testing.T) {
	c, _ := New(3, bform)
	c.StageTrial(0, bform)
	if err := c.Save(filepath.Join(t.TempDir(), "x.csv")); !errors.Is(err, ErrTrialPending) {
		t.Errorf("expected ErrTrialPending, got %v", err)
	}
}

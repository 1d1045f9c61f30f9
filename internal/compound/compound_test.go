package compound

import (
	"math"
	"testing"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	tol := 1e-9 * math.Max(1, math.Abs(want))
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestPeriodRateMatchesExponent(t *testing.T) {
	for _, y := range []float64{0.5, 1, 1.07, 2, 13.3} {
		for _, p := range Periods {
			approx(t, "PeriodRate("+p.String()+")", PeriodRate(p, y), math.Pow(y, p.Exponent()))
		}
	}
}

func TestInverseRateRoundTrips(t *testing.T) {
	for _, y := range []float64{0.5, 1, 1.0001, 1.07, 2, 13.3} {
		for _, p := range Periods {
			approx(t, "InverseRate("+p.String()+")", InverseRate(p, PeriodRate(p, y)), y)
		}
	}
}

func TestInverseExponentIsExact(t *testing.T) {
	if got := Daily.InverseExponent(); got != 365 {
		t.Fatalf("Daily.InverseExponent() = %v, want 365", got)
	}
	if got := Monthly.InverseExponent(); got != 12 {
		t.Fatalf("Monthly.InverseExponent() = %v, want 12", got)
	}
	if got := TenYear.InverseExponent(); got != 0.1 {
		t.Fatalf("TenYear.InverseExponent() = %v, want 0.1", got)
	}
}

func TestPercentRoundTrips(t *testing.T) {
	for _, x := range []float64{-50, 0, 0.0192, 7, 100, 12345.678} {
		approx(t, "ToPercent(FromPercent)", ToPercent(FromPercent(x)), x)
	}
	for _, x := range []float64{0, 0.5, 1, 1.07, 3} {
		approx(t, "FromPercent(ToPercent)", FromPercent(ToPercent(x)), x)
	}
	approx(t, "ToPercent(1.07)", ToPercent(1.07), 7)
}

func TestGainAndInverse(t *testing.T) {
	y, a := 1.07, 100.0
	approx(t, "Gain(yearly)", Gain(Yearly, y, a), 7)
	for _, p := range Periods {
		g := Gain(p, y, a)
		back, ok := InverseGain(p, y, g)
		if !ok {
			t.Fatalf("InverseGain(%s) not ok", p)
		}
		approx(t, "InverseGain("+p.String()+")", back, a)
	}
}

func TestInverseGainDegenerate(t *testing.T) {
	if _, ok := InverseGain(Yearly, 1, 5); ok {
		t.Fatal("InverseGain with rate 1 should not be ok")
	}
	if _, ok := InverseGain(Monthly, math.NaN(), 5); ok {
		t.Fatal("InverseGain with NaN rate should not be ok")
	}
}

func TestProject(t *testing.T) {
	got := Project(2, 10, 3)
	want := []float64{10, 20, 40, 80}
	if len(got) != len(want) {
		t.Fatalf("len(Project) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		approx(t, "Project", got[i], want[i])
	}
	if Project(2, 10, -1) != nil {
		t.Fatal("Project with negative years should be nil")
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range Periods {
		got, ok := ParsePeriod(p.String())
		if !ok || got != p {
			t.Fatalf("ParsePeriod(%q) = %v, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParsePeriod("weekly"); ok {
		t.Fatal("ParsePeriod(weekly) should fail")
	}
}

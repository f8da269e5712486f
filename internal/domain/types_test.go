package domain

import "testing"

func TestDateCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b Date
		want int
	}{
		{"equal", Date{YearJunior, 6, 1}, Date{YearJunior, 6, 1}, 0},
		{"year wins", Date{YearSenior, 1, 1}, Date{YearClassic, 12, 2}, 1},
		{"month wins", Date{YearJunior, 3, 1}, Date{YearJunior, 6, 1}, -1},
		{"half wins", Date{YearJunior, 6, 2}, Date{YearJunior, 6, 1}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Compare(c.b); got != c.want {
				t.Errorf("Compare() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestDateBefore(t *testing.T) {
	if !(Date{YearJunior, 1, 1}.Before(Date{YearJunior, 1, 2})) {
		t.Fatal("expected Y1-01-1 before Y1-01-2")
	}
	if (Date{YearJunior, 1, 2}.Before(Date{YearJunior, 1, 1})) {
		t.Fatal("expected Y1-01-2 not before Y1-01-1")
	}
}

func TestMoodAtLeast(t *testing.T) {
	if !MoodGood.AtLeast(MoodNormal) {
		t.Fatal("GOOD should satisfy >= NORMAL")
	}
	if MoodBad.AtLeast(MoodNormal) {
		t.Fatal("BAD should not satisfy >= NORMAL")
	}
}

func TestStatVectorHeadroom(t *testing.T) {
	target := StatVector{StatSPD: 1000}
	cur := StatVector{StatSPD: 400}
	if got := cur.Headroom(target, StatSPD); got != 600 {
		t.Errorf("Headroom() = %d, want 600", got)
	}
	over := StatVector{StatSPD: 1200}
	if got := over.Headroom(target, StatSPD); got != 0 {
		t.Errorf("Headroom() over cap = %d, want 0", got)
	}
	if !over.AtOrAboveCap(target, StatSPD) {
		t.Fatal("expected AtOrAboveCap true when value exceeds target")
	}
}

func TestOutcomeHelpers(t *testing.T) {
	if !Ok.IsOK() {
		t.Fatal("Ok.IsOK() should be true")
	}
	sf := SoftFail("no_race_found")
	if !sf.IsFail() || sf.IsOK() {
		t.Fatal("SoftFail should be a failure, not ok")
	}
	if sf.String() != "soft_fail(no_race_found)" {
		t.Errorf("String() = %q", sf.String())
	}
	if NoMatch.String() != "no_match" {
		t.Errorf("String() = %q", NoMatch.String())
	}
}

func TestFrameByClass(t *testing.T) {
	f := NewFrame(0, []Detection{
		{Class: "buy_button", Confidence: 0.9},
		{Class: "title", Confidence: 0.5},
	})
	got := f.ByClass("buy_button")
	if len(got) != 1 || got[0].Class != "buy_button" {
		t.Fatalf("ByClass() = %+v", got)
	}
}

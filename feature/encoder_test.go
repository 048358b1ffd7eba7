package feature

import (
	"testing"

	"github.com/rushteam/scorekit/core"
)

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

func TestEncodeTeam_OneHotPairs(t *testing.T) {
	teams := core.DefaultTeamSet()

	for _, a := range core.DefaultTeams {
		for _, b := range core.DefaultTeams {
			if a == b {
				continue
			}
			ea, err := EncodeTeam(a, teams)
			if err != nil {
				t.Fatalf("EncodeTeam(%q) error = %v", a, err)
			}
			eb, err := EncodeTeam(b, teams)
			if err != nil {
				t.Fatalf("EncodeTeam(%q) error = %v", b, err)
			}
			if sum(ea) != 1 || sum(eb) != 1 {
				t.Errorf("one-hot sums: %q=%v %q=%v, want 1", a, sum(ea), b, sum(eb))
			}
			diff := 0
			for i := range ea {
				if ea[i] != eb[i] {
					diff++
				}
			}
			if diff != 2 {
				t.Errorf("%q vs %q differ in %d positions, want 2", a, b, diff)
			}
		}
	}
}

func TestEncodeTeam_Position(t *testing.T) {
	teams := core.DefaultTeamSet()
	got, err := EncodeTeam("Mumbai Indians", teams)
	if err != nil {
		t.Fatalf("EncodeTeam() error = %v", err)
	}
	want := []float64{0, 0, 0, 0, 1, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EncodeTeam() = %v, want %v", got, want)
		}
	}
}

func TestEncodeTeam_Unknown(t *testing.T) {
	_, err := EncodeTeam("Gujarat Titans", core.DefaultTeamSet())
	if err == nil {
		t.Fatal("expected error for unknown team")
	}
	if core.KindOf(err) != core.KindInvalidTeam {
		t.Errorf("kind = %q, want %q", core.KindOf(err), core.KindInvalidTeam)
	}
}

func TestBuildFeatureVector(t *testing.T) {
	teams := core.DefaultTeamSet()
	state := core.MatchState{
		BattingTeam:     "Mumbai Indians",
		BowlingTeam:     "Chennai Super Kings",
		OversCompleted:  10.3,
		CurrentRuns:     85,
		WicketsFallen:   2,
		RunsLastFive:    40,
		WicketsLastFive: 1,
	}

	vec, err := BuildFeatureVector(state, teams)
	if err != nil {
		t.Fatalf("BuildFeatureVector() error = %v", err)
	}
	if len(vec) != 21 {
		t.Fatalf("len = %d, want 21", len(vec))
	}

	want := core.FeatureVector{
		0, 0, 0, 0, 1, 0, 0, 0,
		1, 0, 0, 0, 0, 0, 0, 0,
		85, 2, 10.3, 40, 1,
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestBuildFeatureVector_LengthForAllPairs(t *testing.T) {
	teams := core.DefaultTeamSet()
	for _, a := range core.DefaultTeams {
		for _, b := range core.DefaultTeams {
			vec, err := BuildFeatureVector(core.MatchState{BattingTeam: a, BowlingTeam: b}, teams)
			if err != nil {
				t.Fatalf("BuildFeatureVector(%q, %q) error = %v", a, b, err)
			}
			if len(vec) != Dim(teams) {
				t.Errorf("len = %d, want %d", len(vec), Dim(teams))
			}
		}
	}
}

func TestLayout(t *testing.T) {
	teams := core.DefaultTeamSet()
	names := Layout(teams)
	if len(names) != 21 {
		t.Fatalf("len(Layout) = %d, want 21", len(names))
	}
	tests := []struct {
		idx  int
		want string
	}{
		{0, "batting_0"},
		{7, "batting_7"},
		{8, "bowling_0"},
		{16, FeatureRuns},
		{17, FeatureWickets},
		{18, FeatureOvers},
		{19, FeatureRunsLast5},
		{20, FeatureWicketsLast5},
	}
	for _, tt := range tests {
		if names[tt.idx] != tt.want {
			t.Errorf("Layout[%d] = %q, want %q", tt.idx, names[tt.idx], tt.want)
		}
	}
}

func TestVectorEncoder_Named(t *testing.T) {
	enc := NewVectorEncoder(core.DefaultTeamSet())
	vec, err := enc.Encode(core.MatchState{
		BattingTeam:    "Kings XI Punjab",
		BowlingTeam:    "Sunrisers Hyderabad",
		OversCompleted: 12.0,
		CurrentRuns:    101,
		WicketsFallen:  4,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	named, err := enc.Named(vec)
	if err != nil {
		t.Fatalf("Named() error = %v", err)
	}
	if named["batting_2"] != 1 || named["bowling_7"] != 1 {
		t.Errorf("one-hot positions wrong: %v", named)
	}
	if named[FeatureRuns] != 101 || named[FeatureOvers] != 12.0 {
		t.Errorf("numeric features wrong: %v", named)
	}

	if _, err := enc.Named(vec[:3]); err == nil {
		t.Error("expected length mismatch error")
	}
}

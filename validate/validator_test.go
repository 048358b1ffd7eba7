package validate

import (
	"errors"
	"testing"

	"github.com/rushteam/scorekit/core"
)

func validState() core.MatchState {
	return core.MatchState{
		BattingTeam:     "Mumbai Indians",
		BowlingTeam:     "Chennai Super Kings",
		OversCompleted:  10.3,
		CurrentRuns:     85,
		WicketsFallen:   2,
		RunsLastFive:    40,
		WicketsLastFive: 1,
	}
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *core.MatchState)
		wantKind core.ErrorKind
	}{
		{"valid", func(s *core.MatchState) {}, ""},
		{"same team", func(s *core.MatchState) { s.BowlingTeam = s.BattingTeam }, core.KindSameTeam},
		{"unknown team", func(s *core.MatchState) { s.BowlingTeam = "Gujarat Titans" }, core.KindInvalidTeam},
		{"overs 5.1 accepted", func(s *core.MatchState) { s.OversCompleted = 5.1 }, ""},
		{"overs 5.0 rejected", func(s *core.MatchState) { s.OversCompleted = 5.0 }, core.KindOversRange},
		{"overs 19.5 accepted", func(s *core.MatchState) { s.OversCompleted = 19.5 }, ""},
		{"overs 19.6 rejected", func(s *core.MatchState) { s.OversCompleted = 19.6 }, core.KindOversRange},
		{"overs 20 rejected", func(s *core.MatchState) { s.OversCompleted = 20 }, core.KindOversRange},
		{"overs 5.6 bad format", func(s *core.MatchState) { s.OversCompleted = 5.6 }, core.KindInvalidOverFormat},
		{"overs 12.9 bad format", func(s *core.MatchState) { s.OversCompleted = 12.9 }, core.KindInvalidOverFormat},
		{"overs 12.15 bad format", func(s *core.MatchState) { s.OversCompleted = 12.15 }, core.KindInvalidOverFormat},
		{"overs 12.0 accepted", func(s *core.MatchState) { s.OversCompleted = 12.0 }, ""},
		{"negative runs", func(s *core.MatchState) { s.CurrentRuns = -1 }, core.KindRunsRange},
		{"runs over ceiling", func(s *core.MatchState) { s.CurrentRuns = 355 }, core.KindRunsRange},
		{"runs at ceiling", func(s *core.MatchState) { s.CurrentRuns = 354 }, ""},
		{"wickets 9 accepted", func(s *core.MatchState) { s.WicketsFallen = 9 }, ""},
		{"wickets 10 rejected", func(s *core.MatchState) { s.WicketsFallen = 10 }, core.KindWicketsRange},
		{"negative wickets", func(s *core.MatchState) { s.WicketsFallen = -1; s.WicketsLastFive = 0 }, core.KindWicketsRange},
		{"runs window exceeds total", func(s *core.MatchState) { s.RunsLastFive = 90 }, core.KindWindowConsistency},
		{"negative runs window", func(s *core.MatchState) { s.RunsLastFive = -1 }, core.KindWindowConsistency},
		{"wickets window exceeds total", func(s *core.MatchState) { s.WicketsLastFive = 3 }, core.KindWindowConsistency},
		{"runs window equals total", func(s *core.MatchState) { s.RunsLastFive = 85 }, ""},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validState()
			tt.mutate(&s)
			got, err := v.Validate(s)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if got != s {
					t.Errorf("Validate() = %+v, want %+v", got, s)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected %s", tt.wantKind)
			}
			if k := core.KindOf(err); k != tt.wantKind {
				t.Errorf("kind = %q, want %q (err=%v)", k, tt.wantKind, err)
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("IsInvalidInput(%v) = false", err)
			}
		})
	}
}

func TestValidator_ShortCircuitOrder(t *testing.T) {
	// 同时违反多条规则时返回第一条
	s := core.MatchState{
		BattingTeam:    "Mumbai Indians",
		BowlingTeam:    "Mumbai Indians",
		OversCompleted: 3.7,
		CurrentRuns:    -5,
		WicketsFallen:  11,
		RunsLastFive:   900,
	}
	_, err := New().Validate(s)
	if !errors.Is(err, core.ErrSameTeam) {
		t.Fatalf("err = %v, want SameTeamError", err)
	}

	s.BowlingTeam = "Rajasthan Royals"
	_, err = New().Validate(s)
	if !errors.Is(err, core.ErrOversRange) {
		t.Fatalf("err = %v, want OversRangeError", err)
	}

	s.OversCompleted = 6.7
	_, err = New().Validate(s)
	if !errors.Is(err, core.ErrInvalidOverFormat) {
		t.Fatalf("err = %v, want InvalidOverFormatError", err)
	}
}

func TestValidator_WindowRegardlessOfOtherFields(t *testing.T) {
	v := New()
	for _, overs := range []float64{5.1, 10.3, 19.5} {
		for _, wickets := range []int{0, 5, 9} {
			s := validState()
			s.OversCompleted = overs
			s.WicketsFallen = wickets
			s.WicketsLastFive = 0
			s.CurrentRuns = 85
			s.RunsLastFive = 90
			if _, err := v.Validate(s); core.KindOf(err) != core.KindWindowConsistency {
				t.Errorf("overs=%v wickets=%d: err = %v, want WindowConsistencyError", overs, wickets, err)
			}
		}
	}
}

func TestValidator_Idempotent(t *testing.T) {
	v := New()

	ok, err := v.Validate(validState())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	again, err := v.Validate(ok)
	if err != nil || again != ok {
		t.Errorf("re-validate valid state = (%+v, %v)", again, err)
	}

	bad := validState()
	bad.OversCompleted = 5.6
	_, err1 := v.Validate(bad)
	_, err2 := v.Validate(bad)
	if core.KindOf(err1) != core.KindOf(err2) || core.KindOf(err1) == "" {
		t.Errorf("re-validate invalid state kinds = %q, %q", core.KindOf(err1), core.KindOf(err2))
	}
}

func TestValidator_CustomLimits(t *testing.T) {
	v := New(WithLimits(Limits{MinOvers: 1.0, MaxOvers: 49.5, MaxRuns: 500, MaxWickets: 9}))
	s := validState()
	s.OversCompleted = 35.2
	s.CurrentRuns = 210
	if _, err := v.Validate(s); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidator_CustomTeams(t *testing.T) {
	teams, err := core.NewTeamSet([]core.Team{"Gujarat Titans", "Lucknow Super Giants"})
	if err != nil {
		t.Fatalf("NewTeamSet() error = %v", err)
	}
	v := New(WithTeams(teams))
	s := validState()
	if _, err := v.Validate(s); core.KindOf(err) != core.KindInvalidTeam {
		t.Fatalf("err = %v, want InvalidTeamError", err)
	}
	s.BattingTeam, s.BowlingTeam = "Gujarat Titans", "Lucknow Super Giants"
	if _, err := v.Validate(s); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestGuardRule(t *testing.T) {
	rule, err := NewGuardRule("run_rate_cap", "state.runs <= 36 * (int(state.overs) + 1)")
	if err != nil {
		t.Fatalf("NewGuardRule() error = %v", err)
	}
	v := New(WithRules(rule))

	if _, err := v.Validate(validState()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	s := validState()
	s.OversCompleted = 5.1
	s.CurrentRuns = 300
	s.RunsLastFive = 10
	_, err = v.Validate(s)
	if !errors.Is(err, core.ErrRuleViolation) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}

	// 内置规则先于守卫规则执行
	s.RunsLastFive = 400
	if _, err := v.Validate(s); core.KindOf(err) != core.KindWindowConsistency {
		t.Fatalf("err = %v, want WindowConsistencyError", err)
	}
}

func TestNewGuardRule_CompileError(t *testing.T) {
	if _, err := NewGuardRule("bad", "state.runs >"); err == nil {
		t.Fatal("expected compile error")
	}
}

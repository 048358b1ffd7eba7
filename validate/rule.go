package validate

import (
	"fmt"
	"math"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/dsl"
)

// Rule 是单条校验规则。返回 nil 表示通过，否则返回 *core.DomainError。
type Rule interface {
	// Name 返回规则名称
	Name() string

	// Check 检查比赛状态
	Check(state core.MatchState) error
}

// Limits 是模型训练域的边界
type Limits struct {
	MinOvers   float64 `yaml:"min_overs" json:"min_overs"`
	MaxOvers   float64 `yaml:"max_overs" json:"max_overs"`
	MaxRuns    int     `yaml:"max_runs" json:"max_runs"`
	MaxWickets int     `yaml:"max_wickets" json:"max_wickets"`
}

// DefaultLimits 返回默认边界：overs ∈ [5.1, 19.5]，runs ≤ 354，wickets ≤ 9
func DefaultLimits() Limits {
	cfg := &core.DefaultPredictConfig{}
	return Limits{
		MinOvers:   cfg.DefaultMinOvers(),
		MaxOvers:   cfg.DefaultMaxOvers(),
		MaxRuns:    cfg.DefaultMaxRuns(),
		MaxWickets: cfg.DefaultMaxWickets(),
	}
}

// overEpsilon 吸收 10.3 - 10 = 0.30000000000000071 这类浮点误差
const overEpsilon = 1e-9

// sameTeamRule 击球方与投球方必须不同
type sameTeamRule struct{}

func (sameTeamRule) Name() string { return "same_team" }

func (sameTeamRule) Check(s core.MatchState) error {
	if s.BattingTeam == s.BowlingTeam {
		return core.NewInputError(core.KindSameTeam, "batting and bowling teams must be different")
	}
	return nil
}

// knownTeamRule 两支球队都必须在模型的球队集合中
type knownTeamRule struct {
	teams *core.TeamSet
}

func (knownTeamRule) Name() string { return "known_team" }

func (r knownTeamRule) Check(s core.MatchState) error {
	for _, t := range []core.Team{s.BattingTeam, s.BowlingTeam} {
		if !r.teams.Contains(t) {
			return core.NewInputError(core.KindInvalidTeam, fmt.Sprintf("unknown team %q", t))
		}
	}
	return nil
}

// oversRangeRule 5 个 over 之前的预测不可靠，不在模型支持范围内
type oversRangeRule struct {
	min, max float64
}

func (oversRangeRule) Name() string { return "overs_range" }

func (r oversRangeRule) Check(s core.MatchState) error {
	o := s.OversCompleted
	if math.IsNaN(o) || o < r.min || o > r.max {
		return core.NewInputError(core.KindOversRange,
			fmt.Sprintf("overs must be between %.1f and %.1f, got %v", r.min, r.max, o))
	}
	return nil
}

// overFormatRule 小数部分表示当前 over 已投球数 0~5，一个 over 只有 6 个球
type overFormatRule struct{}

func (overFormatRule) Name() string { return "over_format" }

func (overFormatRule) Check(s core.MatchState) error {
	frac := s.OversCompleted - math.Floor(s.OversCompleted)
	balls := math.Round(frac * 10)
	if frac > 0.5+overEpsilon || math.Abs(frac*10-balls) > overEpsilon*10 {
		return core.NewInputError(core.KindInvalidOverFormat,
			fmt.Sprintf("invalid over %v: one over only contains 6 balls (use .0 to .5)", s.OversCompleted))
	}
	return nil
}

type runsRangeRule struct {
	max int
}

func (runsRangeRule) Name() string { return "runs_range" }

func (r runsRangeRule) Check(s core.MatchState) error {
	if s.CurrentRuns < 0 || s.CurrentRuns > r.max {
		return core.NewInputError(core.KindRunsRange,
			fmt.Sprintf("runs must be between 0 and %d, got %d", r.max, s.CurrentRuns))
	}
	return nil
}

// wicketsRangeRule 第 10 个出局即结束本局
type wicketsRangeRule struct {
	max int
}

func (wicketsRangeRule) Name() string { return "wickets_range" }

func (r wicketsRangeRule) Check(s core.MatchState) error {
	if s.WicketsFallen < 0 || s.WicketsFallen > r.max {
		return core.NewInputError(core.KindWicketsRange,
			fmt.Sprintf("wickets must be between 0 and %d, got %d", r.max, s.WicketsFallen))
	}
	return nil
}

// runsWindowRule 最近 5 个 over 的得分不能超过总得分
type runsWindowRule struct{}

func (runsWindowRule) Name() string { return "runs_window" }

func (runsWindowRule) Check(s core.MatchState) error {
	if s.RunsLastFive < 0 || s.RunsLastFive > s.CurrentRuns {
		return core.NewInputError(core.KindWindowConsistency,
			fmt.Sprintf("runs in last 5 overs must be between 0 and %d, got %d", s.CurrentRuns, s.RunsLastFive))
	}
	return nil
}

// wicketsWindowRule 最近 5 个 over 的出局数不能超过总出局数
type wicketsWindowRule struct{}

func (wicketsWindowRule) Name() string { return "wickets_window" }

func (wicketsWindowRule) Check(s core.MatchState) error {
	if s.WicketsLastFive < 0 || s.WicketsLastFive > s.WicketsFallen {
		return core.NewInputError(core.KindWindowConsistency,
			fmt.Sprintf("wickets in last 5 overs must be between 0 and %d, got %d", s.WicketsFallen, s.WicketsLastFive))
	}
	return nil
}

// GuardRule 把 CEL 守卫表达式包装为 Rule；表达式为 false 或求值失败都视为违反规则。
type GuardRule struct {
	guard *dsl.Guard
}

// NewGuardRule 编译表达式并创建规则
func NewGuardRule(name, expr string) (*GuardRule, error) {
	g, err := dsl.Compile(name, expr)
	if err != nil {
		return nil, err
	}
	return &GuardRule{guard: g}, nil
}

func (r *GuardRule) Name() string { return r.guard.Name }

func (r *GuardRule) Check(s core.MatchState) error {
	ok, err := r.guard.Evaluate(s)
	if err != nil {
		e := core.NewInputError(core.KindRuleViolation, fmt.Sprintf("rule %q could not be evaluated", r.guard.Name))
		e.Err = err
		return e
	}
	if !ok {
		return core.NewInputError(core.KindRuleViolation,
			fmt.Sprintf("rule %q violated: %s", r.guard.Name, r.guard.Expr))
	}
	return nil
}

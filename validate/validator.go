package validate

import (
	"github.com/rushteam/scorekit/core"
)

// Validator 按固定顺序执行校验规则，遇到第一条失败的规则即返回（短路）。
//
// 内置规则顺序：
//  1. same_team       → SameTeamError
//  2. known_team      → InvalidTeamError
//  3. overs_range     → OversRangeError
//  4. over_format     → InvalidOverFormatError
//  5. runs_range      → RunsRangeError
//  6. wickets_range   → WicketsRangeError
//  7. runs_window     → WindowConsistencyError
//  8. wickets_window  → WindowConsistencyError
//
// 之后依次执行配置的守卫规则（RuleViolationError）。
// Validator 构造后只读，可并发使用。
type Validator struct {
	Rules []Rule
}

// Option 配置 Validator
type Option func(*options)

type options struct {
	limits Limits
	teams  *core.TeamSet
	extra  []Rule
}

// WithLimits 设置训练域边界
func WithLimits(limits Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithTeams 设置球队集合，默认 core.DefaultTeamSet()
func WithTeams(teams *core.TeamSet) Option {
	return func(o *options) {
		o.teams = teams
	}
}

// WithRules 追加规则（在内置规则之后执行）
func WithRules(rules ...Rule) Option {
	return func(o *options) {
		o.extra = append(o.extra, rules...)
	}
}

// New 创建带内置规则的 Validator
func New(opts ...Option) *Validator {
	o := &options{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(o)
	}
	if o.teams == nil {
		o.teams = core.DefaultTeamSet()
	}

	rules := []Rule{
		sameTeamRule{},
		knownTeamRule{teams: o.teams},
		oversRangeRule{min: o.limits.MinOvers, max: o.limits.MaxOvers},
		overFormatRule{},
		runsRangeRule{max: o.limits.MaxRuns},
		wicketsRangeRule{max: o.limits.MaxWickets},
		runsWindowRule{},
		wicketsWindowRule{},
	}
	rules = append(rules, o.extra...)
	return &Validator{Rules: rules}
}

// Validate 校验比赛状态。通过则原样返回 state，否则返回第一条失败规则的错误。
// 无副作用，重复校验结果一致。
func (v *Validator) Validate(state core.MatchState) (core.MatchState, error) {
	for _, r := range v.Rules {
		if err := r.Check(state); err != nil {
			return core.MatchState{}, err
		}
	}
	return state, nil
}

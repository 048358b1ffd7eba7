package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/scorekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("state", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Guard 是一条用 CEL 表达式描述的比赛状态守卫规则，表达式必须返回 bool。
//
// 可用变量 state（字段名与请求 JSON 一致）：
//   - state.batting_team / state.bowling_team：string
//   - state.overs：double（板球记法）
//   - state.runs / state.wickets / state.runs_last_5 / state.wickets_last_5：int
//
// 示例：
//   - `state.runs <= 36 * (int(state.overs) + 1)` → 每个 over 最多 36 分
//   - `state.wickets_last_5 <= 5`
//
// 编译后的 Program 是只读的，Guard 可在多个 goroutine 间共享。
type Guard struct {
	Name string
	Expr string
	prg  cel.Program
}

// Compile 编译守卫表达式。编译失败或返回类型不是 bool 时返回错误。
func Compile(name, expr string) (*Guard, error) {
	if expr == "" {
		return nil, fmt.Errorf("guard %q: empty expression", name)
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("guard %q compile error: %w", name, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("guard %q must return bool, got %v", name, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("guard %q program error: %w", name, err)
	}
	return &Guard{Name: name, Expr: expr, prg: prg}, nil
}

// Evaluate 对比赛状态执行表达式，返回布尔结果。
func (g *Guard) Evaluate(state core.MatchState) (bool, error) {
	out, _, err := g.prg.Eval(map[string]interface{}{
		"state": buildInput(state),
	})
	if err != nil {
		return false, fmt.Errorf("guard %q eval error: %w", g.Name, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("guard %q must return bool, got %T", g.Name, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(state core.MatchState) map[string]interface{} {
	return map[string]interface{}{
		"batting_team":   string(state.BattingTeam),
		"bowling_team":   string(state.BowlingTeam),
		"overs":          state.OversCompleted,
		"runs":           int64(state.CurrentRuns),
		"wickets":        int64(state.WicketsFallen),
		"runs_last_5":    int64(state.RunsLastFive),
		"wickets_last_5": int64(state.WicketsLastFive),
	}
}

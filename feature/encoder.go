package feature

import (
	"fmt"

	"github.com/rushteam/scorekit/core"
)

// 数值特征名，顺序即向量中 [2T, 2T+5) 的顺序
const (
	FeatureRuns         = "runs"
	FeatureWickets      = "wickets"
	FeatureOvers        = "overs"
	FeatureRunsLast5    = "runs_last_5"
	FeatureWicketsLast5 = "wickets_last_5"
	PrefixBatting       = "batting"
	PrefixBowling       = "bowling"
	NumericFeatureCount = 5
)

var numericFeatures = []string{
	FeatureRuns,
	FeatureWickets,
	FeatureOvers,
	FeatureRunsLast5,
	FeatureWicketsLast5,
}

// EncodeTeam 把球队编码为长度为 |teams| 的 One-Hot 序列：
// 第 i 位为 1 当且仅当 teams[i] == team。
//
// team 不在集合中属于调用方错误，返回 InvalidTeamError。
func EncodeTeam(team core.Team, teams *core.TeamSet) ([]float64, error) {
	idx, ok := teams.Index(team)
	if !ok {
		return nil, core.NewInputError(core.KindInvalidTeam, fmt.Sprintf("unknown team %q", team))
	}
	encoded := make([]float64, teams.Len())
	encoded[idx] = 1.0
	return encoded, nil
}

// BuildFeatureVector 把比赛状态编码为模型输入向量。
//
// 布局（T = |teams|）：
//
//	[0, T)   击球方 One-Hot
//	[T, 2T)  投球方 One-Hot
//	2T       当前得分
//	2T+1     出局数
//	2T+2     已完成 over（板球记法）
//	2T+3     最近 5 个 over 得分
//	2T+4     最近 5 个 over 出局数
//
// 击球与投球使用同一个 teams 顺序，该顺序必须与模型训练时一致。
func BuildFeatureVector(state core.MatchState, teams *core.TeamSet) (core.FeatureVector, error) {
	batting, err := EncodeTeam(state.BattingTeam, teams)
	if err != nil {
		return nil, err
	}
	bowling, err := EncodeTeam(state.BowlingTeam, teams)
	if err != nil {
		return nil, err
	}

	vec := make(core.FeatureVector, 0, Dim(teams))
	vec = append(vec, batting...)
	vec = append(vec, bowling...)
	vec = append(vec,
		float64(state.CurrentRuns),
		float64(state.WicketsFallen),
		state.OversCompleted,
		float64(state.RunsLastFive),
		float64(state.WicketsLastFive),
	)
	return vec, nil
}

// Dim 返回向量长度 2T+5
func Dim(teams *core.TeamSet) int {
	return 2*teams.Len() + NumericFeatureCount
}

// Layout 返回向量每一位的特征名：batting_0..batting_{T-1}、bowling_0..、runs、wickets、overs、runs_last_5、wickets_last_5。
func Layout(teams *core.TeamSet) []string {
	names := make([]string, 0, Dim(teams))
	for _, prefix := range []string{PrefixBatting, PrefixBowling} {
		for i := 0; i < teams.Len(); i++ {
			names = append(names, fmt.Sprintf("%s_%d", prefix, i))
		}
	}
	return append(names, numericFeatures...)
}

// VectorEncoder 持有球队集合，把 MatchState 编码为 FeatureVector。
// 只读，可并发使用。
type VectorEncoder struct {
	teams *core.TeamSet
	names []string
}

// NewVectorEncoder 创建向量编码器
func NewVectorEncoder(teams *core.TeamSet) *VectorEncoder {
	return &VectorEncoder{
		teams: teams,
		names: Layout(teams),
	}
}

// Encode 编码单个比赛状态
func (e *VectorEncoder) Encode(state core.MatchState) (core.FeatureVector, error) {
	return BuildFeatureVector(state, e.teams)
}

// Dim 返回向量长度
func (e *VectorEncoder) Dim() int { return len(e.names) }

// Names 返回特征名列表的副本
func (e *VectorEncoder) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Teams 返回球队集合
func (e *VectorEncoder) Teams() *core.TeamSet { return e.teams }

// Named 把向量转为 特征名 -> 值 的字典，用于 explain 输出或按名字绑定权重的模型。
func (e *VectorEncoder) Named(vec core.FeatureVector) (map[string]float64, error) {
	if len(vec) != len(e.names) {
		return nil, fmt.Errorf("vector length mismatch: expected %d, got %d", len(e.names), len(vec))
	}
	out := make(map[string]float64, len(vec))
	for i, v := range vec {
		out[e.names[i]] = v
	}
	return out, nil
}

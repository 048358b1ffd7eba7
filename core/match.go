package core

import "fmt"

// Team 是球队标识，取值来自固定、有序的球队集合。
type Team string

// DefaultTeams 是模型训练时使用的球队集合（T = 8）。
//
// 顺序决定 One-Hot 编码的位置，必须与模型训练时完全一致；
// 修改此列表即破坏与模型产物之间的输入契约，需要同时发布重新训练的模型。
var DefaultTeams = []Team{
	"Chennai Super Kings",
	"Delhi Daredevils",
	"Kings XI Punjab",
	"Kolkata Knight Riders",
	"Mumbai Indians",
	"Rajasthan Royals",
	"Royal Challengers Bangalore",
	"Sunrisers Hyderabad",
}

// TeamSet 是有序、只读的球队集合。
// 构造时复制输入切片，之后不再修改，可在多个 goroutine 间共享。
type TeamSet struct {
	teams []Team
	index map[Team]int
}

// NewTeamSet 创建球队集合；空名称或重复名称返回错误。
func NewTeamSet(teams []Team) (*TeamSet, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("team set is empty")
	}
	ts := &TeamSet{
		teams: make([]Team, len(teams)),
		index: make(map[Team]int, len(teams)),
	}
	for i, t := range teams {
		if t == "" {
			return nil, fmt.Errorf("team at index %d is empty", i)
		}
		if _, dup := ts.index[t]; dup {
			return nil, fmt.Errorf("duplicate team %q", t)
		}
		ts.teams[i] = t
		ts.index[t] = i
	}
	return ts, nil
}

// DefaultTeamSet 返回 DefaultTeams 对应的集合
func DefaultTeamSet() *TeamSet {
	ts, err := NewTeamSet(DefaultTeams)
	if err != nil {
		panic(err)
	}
	return ts
}

// Len 返回球队数量 T
func (s *TeamSet) Len() int { return len(s.teams) }

// Index 返回球队位置，不存在返回 (-1, false)
func (s *TeamSet) Index(t Team) (int, bool) {
	i, ok := s.index[t]
	if !ok {
		return -1, false
	}
	return i, true
}

// Contains 判断球队是否在集合中
func (s *TeamSet) Contains(t Team) bool {
	_, ok := s.index[t]
	return ok
}

// Teams 返回球队列表的副本
func (s *TeamSet) Teams() []Team {
	out := make([]Team, len(s.teams))
	copy(out, s.teams)
	return out
}

// Names 返回球队名称列表（字符串形式）
func (s *TeamSet) Names() []string {
	out := make([]string, len(s.teams))
	for i, t := range s.teams {
		out[i] = string(t)
	}
	return out
}

// MatchState 是单次预测的输入：当前比赛状态。
//
// OversCompleted 使用板球记法：整数部分是已完成的 over，小数部分 .0~.5 表示当前 over 已投的球数，
// 不是真正的十进制小数（10.3 = 10 个 over 加 3 个球）。
type MatchState struct {
	BattingTeam     Team    `json:"batting_team" yaml:"batting_team"`
	BowlingTeam     Team    `json:"bowling_team" yaml:"bowling_team"`
	OversCompleted  float64 `json:"overs" yaml:"overs"`
	CurrentRuns     int     `json:"runs" yaml:"runs"`
	WicketsFallen   int     `json:"wickets" yaml:"wickets"`
	RunsLastFive    int     `json:"runs_last_5" yaml:"runs_last_5"`
	WicketsLastFive int     `json:"wickets_last_5" yaml:"wickets_last_5"`
}

// FeatureVector 是送入模型的定长特征向量，布局见 feature.Layout。
type FeatureVector []float64

// ScoreMargin 是预测区间的半宽
const ScoreMargin = 5

// PredictionResult 是预测结果：中心值与区间 [Low, High]。
type PredictionResult struct {
	Center int `json:"center"`
	Low    int `json:"low"`
	High   int `json:"high"`
}

// NewPredictionResult 由中心值构造结果：Low = Center-5，High = Center+5
func NewPredictionResult(center int) PredictionResult {
	return PredictionResult{
		Center: center,
		Low:    center - ScoreMargin,
		High:   center + ScoreMargin,
	}
}

// String 返回展示文本，例如 "160 to 170"
func (r PredictionResult) String() string {
	return fmt.Sprintf("%d to %d", r.Low, r.High)
}

package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feature"
)

// LinearModel 实现了线性回归 (Linear Regression) 模型。
//
// 预测原理：
//
//	score = Intercept + sum(Coefficient_i * Feature_i)
//
// 系数按特征向量下标排列，长度必须等于向量维度（2T+5）。
type LinearModel struct {
	Intercept    float64   // 截距 (Intercept / Bias)
	Coefficients []float64 // 系数 (Coefficients)，与向量布局一一对应

	// Scaler 训练时的预处理（可选），在乘系数之前对原始向量做变换
	Scaler feature.Scaler
}

// linearArtifact 是线性模型产物的 JSON 格式，两种写法任选其一：
//
//	{"intercept": 42.1, "coefficients": [0.1, ...]}
//	{"intercept": 42.1, "weights": {"runs": 0.9, "batting_4": 3.2, ...}}
//
// weights 形式按特征名绑定，缺省的特征系数为 0。可选的 scaler 字段见 scalerArtifact。
type linearArtifact struct {
	Intercept    float64            `json:"intercept"`
	Coefficients []float64          `json:"coefficients"`
	Weights      map[string]float64 `json:"weights"`
	Scaler       *scalerArtifact    `json:"scaler"`
}

// scalerArtifact 描述训练时的预处理：
//
//	{"type": "zscore", "mean": {"runs": 80.2}, "std": {"runs": 31.5}}
//	{"type": "minmax", "min": {"overs": 5}, "max": {"overs": 20}}
type scalerArtifact struct {
	Type string             `json:"type"`
	Mean map[string]float64 `json:"mean"`
	Std  map[string]float64 `json:"std"`
	Min  map[string]float64 `json:"min"`
	Max  map[string]float64 `json:"max"`
}

func (a *scalerArtifact) build(names []string) (feature.Scaler, error) {
	switch a.Type {
	case "zscore", "standard":
		return feature.NewZScoreScaler(names, a.Mean, a.Std)
	case "minmax":
		return feature.NewMinMaxScaler(names, a.Min, a.Max)
	default:
		return nil, fmt.Errorf("unsupported scaler type %q", a.Type)
	}
}

// ParseLinearModel 解析模型产物；names 是特征向量每一位的名字（见 feature.Layout）。
func ParseLinearModel(data []byte, names []string) (*LinearModel, error) {
	var raw linearArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse linear model: %w", err)
	}

	m := &LinearModel{Intercept: raw.Intercept}
	switch {
	case len(raw.Coefficients) > 0:
		if len(raw.Coefficients) != len(names) {
			return nil, fmt.Errorf("linear model has %d coefficients, feature layout has %d", len(raw.Coefficients), len(names))
		}
		m.Coefficients = raw.Coefficients
	case len(raw.Weights) > 0:
		index := make(map[string]int, len(names))
		for i, n := range names {
			index[n] = i
		}
		m.Coefficients = make([]float64, len(names))
		for k, w := range raw.Weights {
			i, ok := index[k]
			if !ok {
				return nil, fmt.Errorf("linear model weight %q does not match any feature", k)
			}
			m.Coefficients[i] = w
		}
	default:
		return nil, fmt.Errorf("linear model has neither coefficients nor weights")
	}

	if raw.Scaler != nil {
		scaler, err := raw.Scaler.build(names)
		if err != nil {
			return nil, fmt.Errorf("linear model scaler: %w", err)
		}
		m.Scaler = scaler
	}
	return m, nil
}

// LoadLinearModel 从 JSON 文件加载线性模型
func LoadLinearModel(path string, names []string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return ParseLinearModel(data, names)
}

// LoadLinearModelFromStore 从 Store（Redis / 内存）的某个 key 加载线性模型
func LoadLinearModelFromStore(ctx context.Context, s core.Store, key string, names []string) (*LinearModel, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load model from %s key %q: %w", s.Name(), key, err)
	}
	return ParseLinearModel(data, names)
}

func (m *LinearModel) Name() string { return "linear" }

// Predict 对每个实例计算线性得分；向量长度与系数不符时返回错误。
func (m *LinearModel) Predict(_ context.Context, instances [][]float64) ([]float64, error) {
	scores := make([]float64, len(instances))
	for i, x := range instances {
		if len(x) != len(m.Coefficients) {
			return nil, fmt.Errorf("instance %d has %d features, model expects %d", i, len(x), len(m.Coefficients))
		}
		if m.Scaler != nil {
			scaled, err := m.Scaler.Transform(x)
			if err != nil {
				return nil, fmt.Errorf("instance %d: %w", i, err)
			}
			x = scaled
		}
		score := m.Intercept
		for j, v := range x {
			score += m.Coefficients[j] * v
		}
		scores[i] = score
	}
	return scores, nil
}

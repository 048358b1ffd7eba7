package feature

import "fmt"

// Scaler 对定长特征向量逐维变换。
// 编码器输出的是原始值；若模型训练时带了预处理（如 sklearn 的 StandardScaler），由模型在内部调用 Scaler。
type Scaler interface {
	// Transform 返回变换后的新向量，不修改输入
	Transform(vec []float64) ([]float64, error)
}

// ZScoreScaler Z-score 标准化
// 公式: z = (x - μ) / σ
// σ <= 0 的维度原样输出
type ZScoreScaler struct {
	Mean []float64
	Std  []float64
}

// NewZScoreScaler 按特征名构造标准化器；未给出的特征均值 0、标准差 1（不变换）
func NewZScoreScaler(names []string, mean, std map[string]float64) (*ZScoreScaler, error) {
	m, err := alignByName(names, mean, 0)
	if err != nil {
		return nil, fmt.Errorf("zscore mean: %w", err)
	}
	s, err := alignByName(names, std, 1)
	if err != nil {
		return nil, fmt.Errorf("zscore std: %w", err)
	}
	return &ZScoreScaler{Mean: m, Std: s}, nil
}

// Transform 标准化向量
func (n *ZScoreScaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(n.Mean) {
		return nil, fmt.Errorf("zscore scaler expects %d features, got %d", len(n.Mean), len(vec))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		if n.Std[i] > 0 {
			out[i] = (v - n.Mean[i]) / n.Std[i]
		} else {
			out[i] = v
		}
	}
	return out, nil
}

// MinMaxScaler Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// max <= min 的维度原样输出
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

// NewMinMaxScaler 按特征名构造归一化器；未给出的特征 min 0、max 1（不变换）
func NewMinMaxScaler(names []string, min, max map[string]float64) (*MinMaxScaler, error) {
	lo, err := alignByName(names, min, 0)
	if err != nil {
		return nil, fmt.Errorf("minmax min: %w", err)
	}
	hi, err := alignByName(names, max, 1)
	if err != nil {
		return nil, fmt.Errorf("minmax max: %w", err)
	}
	return &MinMaxScaler{Min: lo, Max: hi}, nil
}

// Transform 归一化向量
func (n *MinMaxScaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(n.Min) {
		return nil, fmt.Errorf("minmax scaler expects %d features, got %d", len(n.Min), len(vec))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		if r := n.Max[i] - n.Min[i]; r > 0 {
			out[i] = (v - n.Min[i]) / r
		} else {
			out[i] = v
		}
	}
	return out, nil
}

// alignByName 把按名称给出的参数对齐到向量下标；名称不在 names 中视为错误
func alignByName(names []string, values map[string]float64, fill float64) ([]float64, error) {
	index := make(map[string]int, len(names))
	out := make([]float64, len(names))
	for i, n := range names {
		index[n] = i
		out[i] = fill
	}
	for k, v := range values {
		i, ok := index[k]
		if !ok {
			return nil, fmt.Errorf("feature %q not in layout", k)
		}
		out[i] = v
	}
	return out, nil
}

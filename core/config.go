package core

import "time"

// PredictConfig 是预测相关的配置接口，用于提供默认值。
type PredictConfig interface {
	// DefaultMinOvers 返回可预测的最小 over 数（含）
	DefaultMinOvers() float64

	// DefaultMaxOvers 返回可预测的最大 over 数（含）
	DefaultMaxOvers() float64

	// DefaultMaxRuns 返回当前得分的合理上限
	DefaultMaxRuns() int

	// DefaultMaxWickets 返回仍在击球时可出现的最大出局数
	DefaultMaxWickets() int

	// DefaultTimeout 返回模型调用的默认超时时间
	DefaultTimeout() time.Duration
}

// DefaultPredictConfig 是默认的预测配置实现。
// 5 个 over 之前的预测不可靠，不在模型支持范围内。
type DefaultPredictConfig struct{}

func (c *DefaultPredictConfig) DefaultMinOvers() float64 {
	return 5.1
}

func (c *DefaultPredictConfig) DefaultMaxOvers() float64 {
	return 19.5
}

func (c *DefaultPredictConfig) DefaultMaxRuns() int {
	return 354
}

// 第 10 个出局即结束本局，因此"已出局且仍在击球"最多 9 人。
func (c *DefaultPredictConfig) DefaultMaxWickets() int {
	return 9
}

func (c *DefaultPredictConfig) DefaultTimeout() time.Duration {
	return 5 * time.Second
}

var _ PredictConfig = (*DefaultPredictConfig)(nil)

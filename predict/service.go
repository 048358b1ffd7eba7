// Package predict 实现比分预测服务：校验 → 编码 → 调用模型 → 映射为区间。
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feature"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/validate"
)

// Service 是无状态的预测服务。
//
// 模型与球队集合通过构造函数注入，构造后只读；Service 不持有可变共享状态，可被多个请求并发调用。
// 校验失败时不会调用模型；模型失败不重试（同样的输入再调一次结果相同），由调用方决定是否重试。
type Service struct {
	model     model.Regressor
	encoder   *feature.VectorEncoder
	validator *validate.Validator
	logger    *slog.Logger
	metrics   *Metrics
}

// maxScore 是可接受的模型输出绝对值上限，超出即视为推理失败而非截断
const maxScore = math.MaxInt32

// Option 配置 Service
type Option func(*Service)

// WithTeams 设置球队集合（必须与模型训练时的顺序一致），默认 core.DefaultTeamSet()
func WithTeams(teams *core.TeamSet) Option {
	return func(s *Service) {
		s.encoder = feature.NewVectorEncoder(teams)
	}
}

// WithValidator 设置校验器，默认 validate.New(validate.WithTeams(teams))
func WithValidator(v *validate.Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithLogger 设置日志，默认 slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics 设置指标收集器（可选）
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New 创建预测服务
func New(m model.Regressor, opts ...Option) (*Service, error) {
	if m == nil {
		return nil, fmt.Errorf("predict: model is required")
	}
	s := &Service{model: m}
	for _, opt := range opts {
		opt(s)
	}
	if s.encoder == nil {
		s.encoder = feature.NewVectorEncoder(core.DefaultTeamSet())
	}
	if s.validator == nil {
		s.validator = validate.New(validate.WithTeams(s.encoder.Teams()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Teams 返回服务使用的球队集合
func (s *Service) Teams() *core.TeamSet { return s.encoder.Teams() }

// Encoder 返回特征编码器
func (s *Service) Encoder() *feature.VectorEncoder { return s.encoder }

// ModelName 返回模型名称
func (s *Service) ModelName() string { return s.model.Name() }

// PredictScore 预测单场比赛的最终得分区间。
//
//  1. 校验，失败原样返回输入错误，不调用模型
//  2. 编码为特征向量
//  3. 调用模型，任何失败都包装为 ModelInferenceError
//  4. center = round(raw)，结果为 (center, center-5, center+5)
func (s *Service) PredictScore(ctx context.Context, state core.MatchState) (core.PredictionResult, error) {
	results, err := s.predict(ctx, []core.MatchState{state})
	if err != nil {
		return core.PredictionResult{}, err
	}
	return results[0], nil
}

// PredictBatch 批量预测。先校验全部输入（返回第一个失败项，带下标），再一次性调用模型。
func (s *Service) PredictBatch(ctx context.Context, states []core.MatchState) ([]core.PredictionResult, error) {
	if len(states) == 0 {
		return []core.PredictionResult{}, nil
	}
	return s.predict(ctx, states)
}

func (s *Service) predict(ctx context.Context, states []core.MatchState) ([]core.PredictionResult, error) {
	instances := make([][]float64, len(states))
	for i, state := range states {
		valid, err := s.validator.Validate(state)
		if err != nil {
			s.metrics.observeRejected(core.KindOf(err))
			if len(states) > 1 {
				return nil, fmt.Errorf("state %d: %w", i, err)
			}
			return nil, err
		}
		vec, err := s.encoder.Encode(valid)
		if err != nil {
			s.metrics.observeRejected(core.KindOf(err))
			return nil, err
		}
		instances[i] = vec
	}

	start := time.Now()
	raw, err := s.model.Predict(ctx, instances)
	s.metrics.observeLatency(s.model.Name(), time.Since(start))
	if err != nil {
		s.logger.Warn("model inference failed",
			slog.String("model", s.model.Name()),
			slog.Int("batch", len(instances)),
			slog.Any("err", err))
		s.metrics.observeFailed(s.model.Name())
		return nil, core.NewInferenceError(fmt.Sprintf("model %s inference failed", s.model.Name()), err)
	}
	if len(raw) != len(instances) {
		s.metrics.observeFailed(s.model.Name())
		return nil, core.NewInferenceError(
			fmt.Sprintf("model %s returned %d predictions for %d instances", s.model.Name(), len(raw), len(instances)), nil)
	}

	results := make([]core.PredictionResult, len(raw))
	for i, score := range raw {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			s.metrics.observeFailed(s.model.Name())
			return nil, core.NewInferenceError(fmt.Sprintf("model %s returned non-finite score %v", s.model.Name(), score), nil)
		}
		if math.Abs(score) > maxScore {
			s.metrics.observeFailed(s.model.Name())
			return nil, core.NewInferenceError(fmt.Sprintf("model %s returned out-of-range score %v", s.model.Name(), score), nil)
		}
		// .5 取偶数，与训练侧 Python round() 一致
		results[i] = core.NewPredictionResult(int(math.RoundToEven(score)))
	}

	s.metrics.observeSucceeded(s.model.Name(), len(results))
	s.logger.Debug("predicted",
		slog.String("model", s.model.Name()),
		slog.Int("batch", len(results)),
		slog.Int("center", results[0].Center))
	return results, nil
}

// Health 检查模型是否可用；本地模型总是可用
func (s *Service) Health(ctx context.Context) error {
	if hc, ok := s.model.(model.HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// Close 释放模型持有的连接
func (s *Service) Close(ctx context.Context) error {
	if c, ok := s.model.(model.Closer); ok {
		return c.Close(ctx)
	}
	return nil
}

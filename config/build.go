package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/feature"
	"github.com/rushteam/scorekit/predict"
	"github.com/rushteam/scorekit/store"
	"github.com/rushteam/scorekit/validate"
)

// NewLogger 按配置创建 slog.Logger
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// BuildTeams 返回配置的球队集合；未配置时使用默认的 8 支球队
func BuildTeams(cfg *Config) (*core.TeamSet, error) {
	if len(cfg.Teams) == 0 {
		return core.DefaultTeamSet(), nil
	}
	teams := make([]core.Team, len(cfg.Teams))
	for i, name := range cfg.Teams {
		teams[i] = core.Team(name)
	}
	return core.NewTeamSet(teams)
}

// BuildValidator 按配置的边界与 CEL 守卫规则创建校验器
func BuildValidator(cfg *Config, teams *core.TeamSet) (*validate.Validator, error) {
	rules := make([]validate.Rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		r, err := validate.NewGuardRule(rc.Name, rc.Expr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return validate.New(
		validate.WithLimits(cfg.Limits),
		validate.WithTeams(teams),
		validate.WithRules(rules...),
	), nil
}

// BuildStore 按配置创建 Store
func BuildStore(ctx context.Context, cfg StoreConfig) (core.Store, error) {
	switch cfg.Type {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

// BuildPredictor 组装预测服务：球队 → 校验器 → 模型 → predict.Service。
// st 可为 nil（模型不从 Store 加载时）。
func BuildPredictor(ctx context.Context, cfg *Config, st core.Store, logger *slog.Logger, metrics *predict.Metrics) (*predict.Service, error) {
	teams, err := BuildTeams(cfg)
	if err != nil {
		return nil, fmt.Errorf("teams: %w", err)
	}
	v, err := BuildValidator(cfg, teams)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	m, err := BuildModel(ctx, BuildEnv{Store: st, FeatureNames: feature.Layout(teams)}, cfg.Model)
	if err != nil {
		return nil, err
	}
	logger.Info("predictor ready",
		slog.String("model", m.Name()),
		slog.Int("teams", teams.Len()),
		slog.Int("dim", feature.Dim(teams)),
		slog.Int("rules", len(v.Rules)))

	return predict.New(m,
		predict.WithTeams(teams),
		predict.WithValidator(v),
		predict.WithLogger(logger),
		predict.WithMetrics(metrics),
	)
}

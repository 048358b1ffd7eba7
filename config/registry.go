package config

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/model"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/scorekit/config/builders"
// 以触发内置模型（linear、rpc、kserve、tf_serving）的 init 注册。

// BuildEnv 是构建模型时可用的依赖
type BuildEnv struct {
	// Store 用于从 KV 中加载模型产物，可为 nil
	Store core.Store
	// FeatureNames 是特征布局（feature.Layout），用于按名称对齐权重
	FeatureNames []string
}

// ModelBuilder 根据配置构建模型
type ModelBuilder func(ctx context.Context, env BuildEnv, cfg ModelConfig) (model.Regressor, error)

var (
	defaultBuilders   = make(map[string]ModelBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种模型的构建逻辑。
// 建议在 init 中调用，例如：func init() { config.Register("linear", buildLinear) }
func Register(typeName string, builder ModelBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的模型类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// BuildModel 按 cfg.Type 查找已注册的构建器并构建模型
func BuildModel(ctx context.Context, env BuildEnv, cfg ModelConfig) (model.Regressor, error) {
	defaultBuildersMu.RLock()
	builder, ok := defaultBuilders[cfg.Type]
	defaultBuildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported model type %q (supported: %v)", cfg.Type, SupportedTypes())
	}
	m, err := builder(ctx, env, cfg)
	if err != nil {
		return nil, fmt.Errorf("build model %s: %w", cfg.Type, err)
	}
	return m, nil
}

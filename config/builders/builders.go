package builders

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/scorekit/config"
	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/service"
)

func init() {
	config.Register("linear", BuildLinearModel)
	config.Register("rpc", BuildRPCModel)
	config.Register(string(service.ServiceTypeKServe), BuildServiceModel)
	config.Register(string(service.ServiceTypeTFServing), BuildServiceModel)
	config.Register(string(service.ServiceTypeTorchServe), BuildServiceModel)
}

// BuildLinearModel 从 path（JSON 文件）或 store_key（Store 中的 JSON）加载线性模型，path 优先
func BuildLinearModel(ctx context.Context, env config.BuildEnv, cfg config.ModelConfig) (model.Regressor, error) {
	switch {
	case cfg.Path != "":
		return model.LoadLinearModel(cfg.Path, env.FeatureNames)
	case cfg.StoreKey != "":
		if env.Store == nil {
			return nil, fmt.Errorf("store_key %q requires a store", cfg.StoreKey)
		}
		return model.LoadLinearModelFromStore(ctx, env.Store, cfg.StoreKey, env.FeatureNames)
	default:
		return nil, fmt.Errorf("linear model requires path or store_key")
	}
}

// BuildRPCModel 构建自建 HTTP 推理服务的客户端
func BuildRPCModel(_ context.Context, _ config.BuildEnv, cfg config.ModelConfig) (model.Regressor, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("rpc model requires endpoint")
	}
	name := cfg.ModelName
	if name == "" {
		name = conv.ConfigGet(cfg.Params, "name", "rpc")
	}
	return model.NewRPCModel(name, cfg.Endpoint, time.Duration(cfg.Timeout)*time.Second), nil
}

// BuildServiceModel 构建 KServe / TF Serving / TorchServe 客户端并适配为 Regressor
func BuildServiceModel(_ context.Context, _ config.BuildEnv, cfg config.ModelConfig) (model.Regressor, error) {
	svc, err := service.NewMLService(&service.ServiceConfig{
		Type:         service.ServiceType(cfg.Type),
		Endpoint:     cfg.Endpoint,
		ModelName:    cfg.ModelName,
		ModelVersion: cfg.ModelVersion,
		Timeout:      cfg.Timeout,
		Auth:         cfg.Auth,
		Params:       cfg.Params,
	})
	if err != nil {
		return nil, err
	}
	m := model.NewServiceModel(cfg.Type+":"+cfg.ModelName, svc)
	m.ModelName = cfg.ModelName
	m.ModelVersion = cfg.ModelVersion
	return m, nil
}

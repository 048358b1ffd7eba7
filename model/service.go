package model

import (
	"context"
	"fmt"

	"github.com/rushteam/scorekit/core"
)

// ServiceModel 把 core.MLService（KServe / TF Serving 等）适配为 Regressor。
type ServiceModel struct {
	name    string
	Service core.MLService
	// ModelName / ModelVersion 透传给支持多模型的服务（可选）
	ModelName    string
	ModelVersion string
}

// NewServiceModel 创建适配器
func NewServiceModel(name string, svc core.MLService) *ServiceModel {
	return &ServiceModel{name: name, Service: svc}
}

func (m *ServiceModel) Name() string { return m.name }

func (m *ServiceModel) Predict(ctx context.Context, instances [][]float64) ([]float64, error) {
	resp, err := m.Service.Predict(ctx, &core.MLPredictRequest{
		Instances:    instances,
		ModelName:    m.ModelName,
		ModelVersion: m.ModelVersion,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%s: empty response", m.name)
	}
	return resp.Predictions, nil
}

func (m *ServiceModel) Health(ctx context.Context) error {
	return m.Service.Health(ctx)
}

func (m *ServiceModel) Close(ctx context.Context) error {
	return m.Service.Close(ctx)
}

var (
	_ Regressor     = (*ServiceModel)(nil)
	_ HealthChecker = (*ServiceModel)(nil)
	_ Closer        = (*ServiceModel)(nil)
	_ Regressor     = (*LinearModel)(nil)
	_ Regressor     = (*RPCModel)(nil)
	_ HealthChecker = (*RPCModel)(nil)
)

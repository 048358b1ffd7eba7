package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rushteam/scorekit/core"
)

// RPCModel 是通过 HTTP 调用外部模型服务的 Regressor 实现。
// 适用于 Python 侧用 sklearn / XGBoost 训练并自建的推理服务。
type RPCModel struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/predict"
	Timeout  time.Duration
	Client   *http.Client

	once sync.Once
}

func NewRPCModel(name, endpoint string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = (&core.DefaultPredictConfig{}).DefaultTimeout()
	}
	return &RPCModel{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// client 返回 HTTP 客户端；字面量构造且未设置 Client 时只初始化一次
func (m *RPCModel) client() *http.Client {
	m.once.Do(func() {
		if m.Client == nil {
			m.Client = &http.Client{Timeout: m.Timeout}
		}
	})
	return m.Client
}

func (m *RPCModel) Name() string {
	return m.name
}

// Predict 调用远程模型服务进行批量预测。
// 请求格式（JSON）：
//
//	{"instances": [[0, 0, 1, ..., 85, 2, 10.3, 40, 1], ...]}
//
// 响应格式（JSON）：
//
//	{"predictions": [165.2, ...]}
func (m *RPCModel) Predict(ctx context.Context, instances [][]float64) ([]float64, error) {
	if len(instances) == 0 {
		return []float64{}, nil
	}

	jsonData, err := json.Marshal(map[string]any{
		"instances": instances,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		Predictions []float64 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Predictions) != len(instances) {
		return nil, fmt.Errorf("response predictions count mismatch: expected %d, got %d", len(instances), len(result.Predictions))
	}
	return result.Predictions, nil
}

// Health 对 Endpoint 发 GET 请求，任何 2xx/405 视为存活（很多推理服务只接受 POST）。
func (m *RPCModel) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := m.client().Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 == 2 || resp.StatusCode == http.StatusMethodNotAllowed {
		return nil
	}
	return fmt.Errorf("health check failed: status=%d", resp.StatusCode)
}

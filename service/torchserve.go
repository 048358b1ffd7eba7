package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rushteam/scorekit/core"
)

// TorchServeClient 是 TorchServe REST API（推理端口 8080）的客户端实现。
//
//   - Predict: POST /predictions/{model}[/{version}]
//   - 请求：{"data": [[...], ...]}，由模型 Handler 解析
//   - 响应：[s1, s2, ...]、{"predictions": [...]} 或单样本的 {"prediction": s}
//   - Health: GET /ping
type TorchServeClient struct {
	// Endpoint 服务地址，如 "http://localhost:8080"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	httpClient *http.Client
}

// NewTorchServeClient 创建一个新的 TorchServe 客户端。
func NewTorchServeClient(endpoint, modelName string, opts ...TorchServeOption) *TorchServeClient {
	client := &TorchServeClient{
		Endpoint:  endpoint,
		ModelName: modelName,
		Timeout:   30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Timeout: client.Timeout,
		}
	}
	return client
}

// TorchServeOption TorchServe 客户端配置选项
type TorchServeOption func(*TorchServeClient)

// WithTorchServeVersion 设置模型版本
func WithTorchServeVersion(version string) TorchServeOption {
	return func(c *TorchServeClient) {
		c.ModelVersion = version
	}
}

// WithTorchServeTimeout 设置超时时间
func WithTorchServeTimeout(timeout time.Duration) TorchServeOption {
	return func(c *TorchServeClient) {
		c.Timeout = timeout
	}
}

// WithTorchServeAuth 设置认证信息
func WithTorchServeAuth(auth *AuthConfig) TorchServeOption {
	return func(c *TorchServeClient) {
		c.Auth = auth
	}
}

// WithTorchServeHTTPClient 设置自定义 HTTP 客户端
func WithTorchServeHTTPClient(httpClient *http.Client) TorchServeOption {
	return func(c *TorchServeClient) {
		c.httpClient = httpClient
	}
}

func (c *TorchServeClient) predictURL() string {
	if c.ModelVersion != "" {
		return fmt.Sprintf("%s/predictions/%s/%s", c.Endpoint, c.ModelName, c.ModelVersion)
	}
	return fmt.Sprintf("%s/predictions/%s", c.Endpoint, c.ModelName)
}

// Predict 实现 core.MLService 接口
func (c *TorchServeClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if len(req.Instances) == 0 {
		return nil, fmt.Errorf("instances are required")
	}

	respBody, err := postJSON(ctx, c.httpClient, c.Auth, c.predictURL(), map[string]interface{}{
		"data": req.Instances,
	})
	if err != nil {
		return nil, fmt.Errorf("torchserve: %w", err)
	}

	predictions, err := parseTorchServeResponse(respBody)
	if err != nil {
		return nil, fmt.Errorf("torchserve: %w", err)
	}

	return &core.MLPredictResponse{
		Predictions:  predictions,
		Outputs:      string(respBody),
		ModelVersion: c.ModelVersion,
	}, nil
}

// parseTorchServeResponse 解析 Handler 返回的三种常见格式；数量不做修补，由调用方校验
func parseTorchServeResponse(body []byte) ([]float64, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if preds, ok := v["predictions"].([]interface{}); ok {
			items = preds
		} else if pred, ok := v["prediction"]; ok {
			items = []interface{}{pred}
		} else {
			return nil, fmt.Errorf("response has neither predictions nor prediction: %s", string(body))
		}
	case float64:
		items = []interface{}{v}
	default:
		return nil, fmt.Errorf("unable to parse response: %s", string(body))
	}

	predictions := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := toFloat64(item)
		if !ok {
			return nil, fmt.Errorf("unexpected prediction type: %T", item)
		}
		predictions = append(predictions, f)
	}
	return predictions, nil
}

// Health 健康检查
func (c *TorchServeClient) Health(ctx context.Context) error {
	if err := getOK(ctx, c.httpClient, c.Auth, c.Endpoint+"/ping"); err != nil {
		return fmt.Errorf("torchserve health: %w", err)
	}
	return nil
}

// Close 关闭空闲连接
func (c *TorchServeClient) Close(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ core.MLService = (*TorchServeClient)(nil)

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rushteam/scorekit/core"
)

// TFServingClient 是 TensorFlow Serving REST API（端口 8501）的客户端实现。
//
//   - Predict: POST /v1/models/{model}[/versions/{version}]:predict
//   - 请求：{"signature_name": "...", "instances": [[...], ...]}
//   - 响应：{"predictions": [s1, s2, ...]} 或 {"predictions": [[s1], [s2], ...]}
//   - Model Status: GET /v1/models/{model}[/versions/{version}]
//
// gRPC（端口 8500）需要 protobuf 依赖，这里只实现 REST。
type TFServingClient struct {
	// Endpoint 服务地址，如 "http://localhost:8501"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选，为空则使用最新版本）
	ModelVersion string

	// SignatureName 签名名称（可选，默认为 "serving_default"）
	SignatureName string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	httpClient *http.Client
}

// NewTFServingClient 创建一个新的 TF Serving 客户端。
func NewTFServingClient(endpoint, modelName string, opts ...TFServingOption) *TFServingClient {
	client := &TFServingClient{
		Endpoint:      endpoint,
		ModelName:     modelName,
		SignatureName: "serving_default",
		Timeout:       30 * time.Second,
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

// TFServingOption TF Serving 客户端配置选项
type TFServingOption func(*TFServingClient)

// WithTFServingVersion 设置模型版本
func WithTFServingVersion(version string) TFServingOption {
	return func(c *TFServingClient) {
		c.ModelVersion = version
	}
}

// WithTFServingSignature 设置签名名称
func WithTFServingSignature(signatureName string) TFServingOption {
	return func(c *TFServingClient) {
		c.SignatureName = signatureName
	}
}

// WithTFServingTimeout 设置超时时间
func WithTFServingTimeout(timeout time.Duration) TFServingOption {
	return func(c *TFServingClient) {
		c.Timeout = timeout
	}
}

// WithTFServingAuth 设置认证信息
func WithTFServingAuth(auth *AuthConfig) TFServingOption {
	return func(c *TFServingClient) {
		c.Auth = auth
	}
}

// WithTFServingHTTPClient 设置自定义 HTTP 客户端
func WithTFServingHTTPClient(client *http.Client) TFServingOption {
	return func(c *TFServingClient) {
		c.httpClient = client
	}
}

func (c *TFServingClient) modelURL() string {
	if c.ModelVersion != "" {
		return fmt.Sprintf("%s/v1/models/%s/versions/%s", c.Endpoint, c.ModelName, c.ModelVersion)
	}
	return fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
}

// Predict 实现 core.MLService 接口
func (c *TFServingClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if len(req.Instances) == 0 {
		return nil, fmt.Errorf("instances are required")
	}

	body := map[string]interface{}{
		"instances": req.Instances,
	}
	if c.SignatureName != "" {
		body["signature_name"] = c.SignatureName
	}

	respBody, err := postJSON(ctx, c.httpClient, c.Auth, c.modelURL()+":predict", body)
	if err != nil {
		return nil, fmt.Errorf("tf serving: %w", err)
	}

	var result struct {
		Predictions []interface{} `json:"predictions"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("tf serving decode response: %w", err)
	}

	predictions := make([]float64, 0, len(result.Predictions))
	for _, pred := range result.Predictions {
		f, ok := toFloat64(pred)
		if !ok {
			return nil, fmt.Errorf("tf serving unexpected prediction type: %T", pred)
		}
		predictions = append(predictions, f)
	}

	return &core.MLPredictResponse{
		Predictions:  predictions,
		Outputs:      string(respBody),
		ModelVersion: c.ModelVersion,
	}, nil
}

// Health 健康检查
func (c *TFServingClient) Health(ctx context.Context) error {
	if err := getOK(ctx, c.httpClient, c.Auth, c.modelURL()); err != nil {
		return fmt.Errorf("tf serving health: %w", err)
	}
	return nil
}

// Close 关闭空闲连接
func (c *TFServingClient) Close(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ core.MLService = (*TFServingClient)(nil)

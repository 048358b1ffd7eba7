package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// 本包实现 core.MLService，用于对接外部模型服务（KServe、TensorFlow Serving、TorchServe）。
//
// 使用示例：
//
//	svc := service.NewKServeClient("http://localhost:8000", "ipl-score")
//	resp, err := svc.Predict(ctx, &core.MLPredictRequest{
//	    Instances: [][]float64{vec},
//	})

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeKServe     ServiceType = "kserve"     // KServe V1/V2
	ServiceTypeTFServing  ServiceType = "tf_serving" // TensorFlow Serving REST
	ServiceTypeTorchServe ServiceType = "torchserve" // TorchServe REST
)

// ServiceConfig 服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType `yaml:"type" json:"type"`

	// Endpoint 服务根地址
	// KServe: "http://localhost:8000"
	// TF Serving: "http://localhost:8501"
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// ModelName 模型名称
	ModelName string `yaml:"model_name" json:"model_name"`

	// ModelVersion 模型版本（可选）
	ModelVersion string `yaml:"model_version" json:"model_version"`

	// Timeout 超时时间（秒）
	Timeout int `yaml:"timeout" json:"timeout"`

	// Auth 认证信息（可选）
	Auth *AuthConfig `yaml:"auth" json:"auth"`

	// Params 额外参数，例如 KServe 的 protocol / input_name / output_name
	Params map[string]interface{} `yaml:"params" json:"params"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string `yaml:"type" json:"type"` // "basic", "bearer", "api_key"
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Token    string `yaml:"token" json:"token"`
	APIKey   string `yaml:"api_key" json:"api_key"`
}

// apply 添加认证信息到 HTTP 请求
func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case "basic":
		req.SetBasicAuth(a.Username, a.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case "api_key":
		req.Header.Set("X-API-Key", a.APIKey)
	}
}

// postJSON 发送 JSON 请求，非 200 返回带响应体的错误，成功时返回响应体。
func postJSON(ctx context.Context, client *http.Client, auth *AuthConfig, url string, body interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	auth.apply(httpReq)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}

// getOK 发送 GET 请求，仅 200 视为成功
func getOK(ctx context.Context, client *http.Client, auth *AuthConfig, url string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	auth.apply(httpReq)

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// toFloat64 解析 JSON 中的数值；嵌套数组取第一个标量（多输出模型）
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case []interface{}:
		if len(val) > 0 {
			return toFloat64(val[0])
		}
		return 0, false
	default:
		return 0, false
	}
}

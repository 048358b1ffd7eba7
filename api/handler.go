// Package api 提供预测服务的 HTTP 接口。
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/predict"
)

const (
	maxBodyBytes = 1 << 20
	maxBatchSize = 256
)

// MinOversNote 随球队列表返回给前端展示
const MinOversNote = "Prediction requires a minimum of 5 overs to be completed."

// Handler 持有 HTTP 处理所需的依赖
type Handler struct {
	svc    *predict.Service
	logger *slog.Logger
}

// NewHandler 创建 Handler；logger 为 nil 时使用 slog.Default()
func NewHandler(svc *predict.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// PredictResponse 是单次预测的响应
type PredictResponse struct {
	PredictionID string             `json:"prediction_id"`
	Center       int                `json:"center"`
	Low          int                `json:"low"`
	High         int                `json:"high"`
	Display      string             `json:"display"`
	Features     map[string]float64 `json:"features,omitempty"`
}

// BatchRequest 是批量预测的请求
type BatchRequest struct {
	States []core.MatchState `json:"states"`
}

// BatchResponse 是批量预测的响应，Predictions 与请求的 States 一一对应
type BatchResponse struct {
	Predictions []PredictResponse `json:"predictions"`
}

// ErrorBody 是错误响应中的 error 字段
type ErrorBody struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func newPredictResponse(r core.PredictionResult) PredictResponse {
	return PredictResponse{
		PredictionID: uuid.NewString(),
		Center:       r.Center,
		Low:          r.Low,
		High:         r.High,
		Display:      r.String(),
	}
}

// Predict 处理 POST /api/v1/predict。
// ?explain=true 时额外返回按特征名展开的输入向量。
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var state core.MatchState
	if err := decodeJSON(w, r, &state); err != nil {
		respondError(w, http.StatusBadRequest, ErrorBody{Message: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	result, err := h.svc.PredictScore(r.Context(), state)
	if err != nil {
		h.respondDomainError(w, err, slog.String("batting_team", string(state.BattingTeam)))
		return
	}

	resp := newPredictResponse(result)
	if explain, _ := strconv.ParseBool(r.URL.Query().Get("explain")); explain {
		resp.Features = h.explain(state)
	}
	h.logger.Info("prediction",
		slog.String("prediction_id", resp.PredictionID),
		slog.String("batting_team", string(state.BattingTeam)),
		slog.String("bowling_team", string(state.BowlingTeam)),
		slog.Float64("overs", state.OversCompleted),
		slog.Int("center", resp.Center))
	respondJSON(w, http.StatusOK, resp)
}

// PredictBatch 处理 POST /api/v1/predict/batch
func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrorBody{Message: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if len(req.States) > maxBatchSize {
		respondError(w, http.StatusBadRequest, ErrorBody{
			Message: fmt.Sprintf("batch of %d exceeds limit %d", len(req.States), maxBatchSize),
		})
		return
	}

	results, err := h.svc.PredictBatch(r.Context(), req.States)
	if err != nil {
		h.respondDomainError(w, err, slog.Int("batch", len(req.States)))
		return
	}

	resp := BatchResponse{Predictions: make([]PredictResponse, len(results))}
	for i, res := range results {
		resp.Predictions[i] = newPredictResponse(res)
	}
	h.logger.Info("batch prediction", slog.Int("batch", len(results)))
	respondJSON(w, http.StatusOK, resp)
}

// Teams 处理 GET /api/v1/teams：球队顺序即 one-hot 顺序
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	enc := h.svc.Encoder()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams":    enc.Teams().Names(),
		"dim":      enc.Dim(),
		"features": enc.Names(),
		"note":     MinOversNote,
	})
}

// HealthCheck 处理 GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"model":  h.svc.ModelName(),
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "scorekit",
		"model":   h.svc.ModelName(),
	})
}

func (h *Handler) explain(state core.MatchState) map[string]float64 {
	enc := h.svc.Encoder()
	vec, err := enc.Encode(state)
	if err != nil {
		return nil
	}
	named, err := enc.Named(vec)
	if err != nil {
		return nil
	}
	return named
}

// respondDomainError 按错误码映射 HTTP 状态：输入无效 422，模型不可用 503，其它 500
func (h *Handler) respondDomainError(w http.ResponseWriter, err error, attrs ...any) {
	status := http.StatusInternalServerError
	body := ErrorBody{Message: err.Error()}
	if de := core.GetDomainError(err); de != nil {
		body.Kind = string(de.Kind)
		body.Code = de.Code
		switch {
		case core.IsInvalidInput(err):
			status = http.StatusUnprocessableEntity
		case core.IsUnavailable(err):
			status = http.StatusServiceUnavailable
		}
	}

	attrs = append(attrs, slog.Int("status", status), slog.String("kind", body.Kind), slog.Any("err", err))
	if status == http.StatusUnprocessableEntity {
		h.logger.Info("prediction rejected", attrs...)
	} else {
		h.logger.Error("prediction failed", attrs...)
	}
	respondError(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

// respondJSON 写 JSON 响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 写 {"error": {...}} 响应
func respondError(w http.ResponseWriter, status int, body ErrorBody) {
	respondJSON(w, status, map[string]ErrorBody{"error": body})
}

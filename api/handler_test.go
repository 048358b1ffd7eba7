package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/scorekit/model"
	"github.com/rushteam/scorekit/predict"
)

const scenarioBody = `{
	"batting_team": "Mumbai Indians",
	"bowling_team": "Chennai Super Kings",
	"overs": 10.3,
	"runs": 85,
	"wickets": 2,
	"runs_last_5": 40,
	"wickets_last_5": 1
}`

func fixed(score float64) model.Regressor {
	return model.Func(func(_ context.Context, instances [][]float64) ([]float64, error) {
		out := make([]float64, len(instances))
		for i := range out {
			out[i] = score
		}
		return out, nil
	})
}

// healthModel 是带健康检查的模型
type healthModel struct {
	model.Regressor
	err error
}

func (m healthModel) Health(context.Context) error { return m.err }

func newServer(t *testing.T, m model.Regressor, reg *prometheus.Registry) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []predict.Option{predict.WithLogger(logger)}
	cfg := RouterConfig{CORSOrigins: []string{"http://localhost:3000"}}
	if reg != nil {
		metrics, err := predict.NewMetrics(reg)
		if err != nil {
			t.Fatal(err)
		}
		opts = append(opts, predict.WithMetrics(metrics))
		cfg.Gatherer = reg
	}
	svc, err := predict.New(m, opts...)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewRouter(NewHandler(svc, logger), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func errorKind(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	kind, _ := e["kind"].(string)
	return kind
}

func TestPredict(t *testing.T) {
	srv := newServer(t, fixed(165.0), nil)

	resp, body := post(t, srv.URL+"/api/v1/predict", scenarioBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["center"] != 165.0 || body["low"] != 160.0 || body["high"] != 170.0 {
		t.Errorf("body = %v", body)
	}
	if body["display"] != "160 to 170" {
		t.Errorf("display = %v", body["display"])
	}
	if _, err := uuid.Parse(body["prediction_id"].(string)); err != nil {
		t.Errorf("prediction_id = %v: %v", body["prediction_id"], err)
	}
	if _, ok := body["features"]; ok {
		t.Error("features returned without explain")
	}
}

func TestPredict_Explain(t *testing.T) {
	srv := newServer(t, fixed(165.0), nil)

	_, body := post(t, srv.URL+"/api/v1/predict?explain=true", scenarioBody)
	features, ok := body["features"].(map[string]interface{})
	if !ok || len(features) != 21 {
		t.Fatalf("features = %v", body["features"])
	}
	if features["batting_4"] != 1.0 || features["bowling_0"] != 1.0 || features["runs"] != 85.0 || features["overs"] != 10.3 {
		t.Errorf("features = %v", features)
	}
}

func TestPredict_Errors(t *testing.T) {
	failing := model.Func(func(context.Context, [][]float64) ([]float64, error) {
		return nil, errors.New("connection refused")
	})
	tests := []struct {
		name   string
		model  model.Regressor
		body   string
		status int
		kind   string
	}{
		{"same team", fixed(1), strings.Replace(scenarioBody, "Chennai Super Kings", "Mumbai Indians", 1), http.StatusUnprocessableEntity, "SameTeamError"},
		{"overs format", fixed(1), strings.Replace(scenarioBody, "10.3", "10.7", 1), http.StatusUnprocessableEntity, "InvalidOverFormatError"},
		{"unknown team", fixed(1), strings.Replace(scenarioBody, "Mumbai Indians", "Deccan Chargers", 1), http.StatusUnprocessableEntity, "InvalidTeamError"},
		{"missing fields", fixed(1), `{"batting_team": "Mumbai Indians", "bowling_team": "Delhi Daredevils"}`, http.StatusUnprocessableEntity, "OversRangeError"},
		{"model down", failing, scenarioBody, http.StatusServiceUnavailable, "ModelInferenceError"},
		{"malformed", fixed(1), `{"overs": `, http.StatusBadRequest, ""},
		{"unknown field", fixed(1), `{"over": 10.3}`, http.StatusBadRequest, ""},
		{"wrong type", fixed(1), `{"runs": "85"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.model, nil)
			resp, body := post(t, srv.URL+"/api/v1/predict", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (body %v)", resp.StatusCode, tt.status, body)
			}
			if got := errorKind(body); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestPredictBatch(t *testing.T) {
	srv := newServer(t, fixed(150.4), nil)

	resp, body := post(t, srv.URL+"/api/v1/predict/batch", `{"states": [`+scenarioBody+`,`+scenarioBody+`]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	preds, _ := body["predictions"].([]interface{})
	if len(preds) != 2 {
		t.Fatalf("predictions = %v", body["predictions"])
	}
	first := preds[0].(map[string]interface{})
	if first["center"] != 150.0 || first["prediction_id"] == preds[1].(map[string]interface{})["prediction_id"] {
		t.Errorf("predictions = %v", preds)
	}

	bad := strings.Replace(scenarioBody, `"wickets_last_5": 1`, `"wickets_last_5": 3`, 1)
	resp, body = post(t, srv.URL+"/api/v1/predict/batch", `{"states": [`+scenarioBody+`,`+bad+`]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity || errorKind(body) != "WindowConsistencyError" {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if msg := body["error"].(map[string]interface{})["message"].(string); !strings.HasPrefix(msg, "state 1:") {
		t.Errorf("message = %q, want index prefix", msg)
	}

	states := strings.Repeat(scenarioBody+",", maxBatchSize) + scenarioBody
	resp, _ = post(t, srv.URL+"/api/v1/predict/batch", `{"states": [`+states+`]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d", resp.StatusCode)
	}
}

func TestTeams(t *testing.T) {
	srv := newServer(t, fixed(1), nil)

	resp, err := http.Get(srv.URL + "/api/v1/teams")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Teams    []string `json:"teams"`
		Dim      int      `json:"dim"`
		Features []string `json:"features"`
		Note     string   `json:"note"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Teams) != 8 || body.Teams[4] != "Mumbai Indians" || body.Dim != 21 || len(body.Features) != 21 {
		t.Errorf("body = %+v", body)
	}
	if body.Note != MinOversNote {
		t.Errorf("note = %q", body.Note)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		model  model.Regressor
		status int
	}{
		{"local model", fixed(1), http.StatusOK},
		{"remote healthy", healthModel{Regressor: fixed(1)}, http.StatusOK},
		{"remote down", healthModel{Regressor: fixed(1), err: errors.New("503 from kserve")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.model, nil)
			resp, err := http.Get(srv.URL + "/health")
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, fixed(170), prometheus.NewRegistry())
	post(t, srv.URL+"/api/v1/predict", scenarioBody)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `scorekit_predictions_total{model="func",outcome="ok"} 1`) {
		t.Errorf("metrics output missing prediction counter:\n%s", data)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, fixed(1), nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	svc, err := predict.New(fixed(165.0), predict.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(NewHandler(svc, logger), RouterConfig{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(scenarioBody))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var entry map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("access log is not JSON: %q", line)
		}
		if m["msg"] == "request" {
			entry = m
		}
	}
	if entry == nil {
		t.Fatalf("no access log line in %q", buf.String())
	}
	if entry["status"] != 200.0 || entry["method"] != "POST" || entry["path"] != "/api/v1/predict" {
		t.Errorf("access log = %v", entry)
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Errorf("request_id missing: %v", entry)
	}
}

package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/claimguard/internal/auth"
	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/metrics"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/prediction"
	"github.com/Veraticus/claimguard/internal/service"
	"github.com/Veraticus/claimguard/internal/session"
)

const (
	demoUser     = "demo"
	demoPassword = "Pa@ssW0rd123!*"
	cookieName   = "claimguard_session"
)

type testServer struct {
	server   *Server
	sessions *session.MemoryStore
}

type serverOption func(*config.Config, *Deps)

func withPredictor(p service.Predictor) serverOption {
	return func(_ *config.Config, d *Deps) { d.Predictor = p }
}

func withDataPath(path string) serverOption {
	return func(c *config.Config, _ *Deps) { c.Data.CSVPath = path }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.MinCost)
	require.NoError(t, err)
	authenticator, err := auth.NewBcryptAuthenticator(map[string]string{demoUser: string(hash)})
	require.NoError(t, err)

	sessions := session.NewMemoryStore(0)
	cfg := config.Config{
		Server:  config.ServerConfig{Addr: ":0"},
		Session: config.SessionConfig{Backend: "memory", CookieName: cookieName},
		Data:    config.DataConfig{CSVPath: filepath.Join(t.TempDir(), "missing.csv"), MaxRows: 100},
	}
	deps := Deps{
		Sessions:  sessions,
		Auth:      authenticator,
		Predictor: prediction.NewDispatcher(model.DefaultRegistry(), nil, nil),
		Metrics:   metrics.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	srv, err := NewServer(cfg, deps)
	require.NoError(t, err)
	return &testServer{server: srv, sessions: sessions}
}

// login creates a session directly and returns its cookie.
func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := ts.sessions.Create(context.Background(), demoUser)
	require.NoError(t, err)
	return &http.Cookie{Name: cookieName, Value: token}
}

func (ts *testServer) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewServer_RequiresCollaborators(t *testing.T) {
	_, err := NewServer(config.Config{}, Deps{})
	require.Error(t, err)
}

func TestLoginPage(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/login"} {
		w := ts.do(httptest.NewRequest(http.MethodGet, path, nil), nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, strings.ToLower(w.Body.String()), "login")
	}
}

func TestLogin(t *testing.T) {
	t.Run("success sets cookie and redirects", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/login", url.Values{"username": {demoUser}, "password": {demoPassword}}), nil)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, cookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.Equal(t, 1, ts.sessions.Len())

		dash := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookies[0])
		assert.Equal(t, http.StatusOK, dash.Code)
	})

	t.Run("wrong credentials re-render the form", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/login", url.Values{"username": {"wrong"}, "password": {"wrong"}}), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, strings.ToLower(w.Body.String()), "login")
		assert.Contains(t, w.Body.String(), msgInvalidCredentials)
		assert.Empty(t, w.Result().Cookies())
		assert.Equal(t, 0, ts.sessions.Len())
	})

	t.Run("right user wrong password", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/", url.Values{"username": {demoUser}, "password": {"Pa@ssW0rd123!"}}), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), msgInvalidCredentials)
	})
}

func TestPages_RequireSession(t *testing.T) {
	ts := newTestServer(t)
	paths := []string{
		"/dashboard", "/profile", "/data", "/exploratory-analysis",
		"/data-drift", "/model-training", "/model-inference", "/feature-importance",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := ts.do(httptest.NewRequest(http.MethodGet, path, nil), nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))

			stale := ts.do(httptest.NewRequest(http.MethodGet, path, nil), &http.Cookie{Name: cookieName, Value: "forged"})
			assert.Equal(t, http.StatusFound, stale.Code)

			ok := ts.do(httptest.NewRequest(http.MethodGet, path, nil), ts.login(t))
			assert.Equal(t, http.StatusOK, ok.Code)
			assert.Contains(t, ok.Body.String(), "Signed in as demo")
		})
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), ts.login(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Demo prepared for Arch Systems")
}

func TestSettings_Public(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/settings", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Settings")
	assert.NotContains(t, w.Body.String(), "Signed in as")
}

func TestDataPage(t *testing.T) {
	t.Run("renders csv rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mock_data.csv")
		require.NoError(t, os.WriteFile(path, []byte("header1,header2\nvalue1,value2\n"), 0o600))
		ts := newTestServer(t, withDataPath(path))

		w := ts.do(httptest.NewRequest(http.MethodGet, "/data", nil), ts.login(t))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<th>header1</th>")
		assert.Contains(t, w.Body.String(), "<td>value2</td>")
	})

	t.Run("missing file shows default headers", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(httptest.NewRequest(http.MethodGet, "/data", nil), ts.login(t))
		require.Equal(t, http.StatusOK, w.Code)
		for _, h := range []string{"Patient UUID", "CDT Code", "Amount", "Date", "Notes"} {
			assert.Contains(t, w.Body.String(), "<th>"+h+"</th>")
		}
		assert.Contains(t, w.Body.String(), "No data available")
	})
}

func TestPredictAPI(t *testing.T) {
	t.Run("routine notes give fixed medium risk", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/api/predict", url.Values{
			"model_type":   {"nlp_classifier"},
			"patient_uuid": {"test-uuid"},
			"cdt_code":     {"D1234"},
			"amount":       {"100"},
			"notes":        {"routine checkup, standard cleaning"},
			"date":         {"2024-01-01"},
		}), ts.login(t))
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeJSON(t, w)
		assert.Equal(t, "Medium Risk", body["result"])
		assert.Equal(t, 0.55, body["confidence"])
		assert.Equal(t, "NLP Note Classifier", body["model_used"])
		assert.NotContains(t, body, "nova_response")
	})

	t.Run("tabular result is a risk label", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/api/predict", url.Values{
			"model_type": {"tabular_classifier"},
			"cdt_code":   {"D1234"},
			"amount":     {"100"},
		}), ts.login(t))
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeJSON(t, w)
		assert.Contains(t, []any{"High Risk", "Medium Risk", "Low Risk"}, body["result"])
		assert.Equal(t, "Tabular Classifier", body["model_used"])
		confidence, ok := body["confidence"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, confidence, 0.0)
		assert.LessOrEqual(t, confidence, 0.95)
	})

	t.Run("unknown model uses fallback", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/api/predict", url.Values{"model_type": {"random_forest"}}), ts.login(t))
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeJSON(t, w)
		assert.Contains(t, []any{"High Risk", "Low Risk"}, body["result"])
		assert.Equal(t, "Unknown Model", body["model_used"])
		assert.Equal(t, []any{"Factor A", "Factor B", "Factor C"}, body["factors"])
		confidence, ok := body["confidence"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, confidence, 0.7)
		assert.LessOrEqual(t, confidence, 0.95)
	})

	t.Run("remote narrative is included", func(t *testing.T) {
		narrated := service.PredictorFunc(func(_ context.Context, rec model.TransactionRecord) (model.PredictionResult, error) {
			return model.PredictionResult{
				Classification: model.ClassFraud,
				RiskLevel:      model.RiskHigh,
				Confidence:     0.9,
				Factors:        []string{"Unusual amount pattern"},
				ModelUsed:      "AWS Nova",
				Narrative:      "Amount for " + rec.ProcedureCode + " is unusually high.",
			}, nil
		})
		ts := newTestServer(t, withPredictor(narrated))

		w := ts.do(formRequest("/api/predict", url.Values{"model_type": {"aws_nova"}, "cdt_code": {"D2740"}}), ts.login(t))
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeJSON(t, w)
		assert.Equal(t, "High Risk", body["result"])
		assert.Equal(t, "Amount for D2740 is unusually high.", body["nova_response"])
	})

	t.Run("remote unavailable is 503", func(t *testing.T) {
		down := service.PredictorFunc(func(context.Context, model.TransactionRecord) (model.PredictionResult, error) {
			return model.PredictionResult{}, common.ErrRemoteUnavailable
		})
		ts := newTestServer(t, withPredictor(down))

		w := ts.do(formRequest("/api/predict", url.Values{"model_type": {"aws_nova"}}), ts.login(t))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Inference service unavailable", decodeJSON(t, w)["error"])
	})

	t.Run("panicking predictor is recovered", func(t *testing.T) {
		boom := service.PredictorFunc(func(context.Context, model.TransactionRecord) (model.PredictionResult, error) {
			panic("boom")
		})
		ts := newTestServer(t, withPredictor(boom))

		w := ts.do(formRequest("/api/predict", url.Values{"model_type": {"nlp_classifier"}}), ts.login(t))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("without auth", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(formRequest("/api/predict", url.Values{"model_type": {"nlp_classifier"}}), nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authenticated", decodeJSON(t, w)["error"])
	})

	validation := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"missing model type", url.Values{}, "Model type is required"},
		{"bad amount", url.Values{"model_type": {"tabular_classifier"}, "amount": {"a lot"}}, prediction.MsgInvalidAmount},
		{"negative amount", url.Values{"model_type": {"tabular_classifier"}, "amount": {"-20"}}, prediction.MsgNegativeAmount},
		{"bad date", url.Values{"model_type": {"tabular_classifier"}, "date": {"2024-13-45"}}, prediction.MsgInvalidDate},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			w := ts.do(formRequest("/api/predict", tt.values), ts.login(t))
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decodeJSON(t, w)["error"])
		})
	}
}

func TestTriggerRetraining(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodPost, "/api/trigger-retraining", nil), ts.login(t))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, "Retraining job started", body["status"])
	assert.Equal(t, "12345", body["job_id"])

	unauth := ts.do(httptest.NewRequest(http.MethodPost, "/api/trigger-retraining", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, unauth.Code)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/logout", nil), cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
	assert.Equal(t, 0, ts.sessions.Len())

	again := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookie)
	assert.Equal(t, http.StatusFound, again.Code)

	anonymous := ts.do(httptest.NewRequest(http.MethodGet, "/logout", nil), nil)
	assert.Equal(t, http.StatusFound, anonymous.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	health := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	require.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "ok", decodeJSON(t, health)["status"])

	ts.do(formRequest("/api/predict", url.Values{"model_type": {"nlp_classifier"}}), nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `claimguard_http_requests_total{method="POST",path="/api/predict",status="401"} 1`)
}

func TestStubRetrainer(t *testing.T) {
	job, err := StubRetrainer{}.TriggerRetraining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.RetrainingJob{Status: "Retraining job started", JobID: "12345"}, job)
}

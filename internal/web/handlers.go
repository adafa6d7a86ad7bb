package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/dataset"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/prediction"
)

const msgInvalidCredentials = "Invalid username or password"

// predictResponse is the /api/predict payload.
type predictResponse struct {
	NovaResponse *string  `json:"nova_response,omitempty"`
	Result       string   `json:"result"`
	ModelUsed    string   `json:"model_used"`
	Factors      []string `json:"factors"`
	Confidence   float64  `json:"confidence"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (s *Server) handleLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	ctx := c.Request.Context()

	if err := s.deps.Auth.Authenticate(ctx, username, password); err != nil {
		if !errors.Is(err, common.ErrUnauthenticated) {
			s.logger.Error("Authentication failed", "error", err)
		}
		s.logger.Info("Login rejected", "username", username)
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Title":     "Login",
			"Error":     msgInvalidCredentials,
			"LoginName": username,
		})
		return
	}

	token, err := s.deps.Sessions.Create(ctx, username)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "Error": "Unable to sign in right now"})
		return
	}

	s.setSessionCookie(c, token)
	s.logger.Info("Login succeeded", "username", username)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(s.cfg.Session.CookieName); err == nil && token != "" {
		if err := s.deps.Sessions.Destroy(c.Request.Context(), token); err != nil {
			s.logger.Warn("Failed to destroy session", "error", err)
		}
	}
	s.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/login")
}

func (s *Server) handleSettings(c *gin.Context) {
	data := gin.H{"Title": "Settings", "ActivePage": "settings"}
	if username, ok, err := s.currentUser(c); err == nil && ok {
		data["Username"] = username
	}
	c.HTML(http.StatusOK, "settings.html", data)
}

// page renders a static authenticated page.
func (s *Server) page(name, active string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, gin.H{
			"Username":   c.GetString(usernameKey),
			"ActivePage": active,
		})
	}
}

func (s *Server) handleData(c *gin.Context) {
	table, err := dataset.Load(s.cfg.Data.CSVPath, s.cfg.Data.MaxRows)
	if err != nil {
		s.logger.Error("Failed to load dataset", "path", s.cfg.Data.CSVPath, "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "Error": "Unable to load data"})
		return
	}

	c.HTML(http.StatusOK, "data.html", gin.H{
		"Username":   c.GetString(usernameKey),
		"ActivePage": "data",
		"Headers":    table.Headers,
		"Rows":       table.Rows,
	})
}

func (s *Server) handlePredict(c *gin.Context) {
	record, err := prediction.NewRecord(prediction.RecordInput{
		ModelType:     c.PostForm("model_type"),
		PatientID:     c.PostForm("patient_uuid"),
		ProcedureCode: c.PostForm("cdt_code"),
		Amount:        c.PostForm("amount"),
		Notes:         c.PostForm("notes"),
		Date:          c.PostForm("date"),
	})
	if err != nil {
		msg, ok := common.UserMessage(err)
		if !ok {
			msg = "Invalid request"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	result, err := s.deps.Predictor.Predict(c.Request.Context(), record)
	if err != nil {
		if errors.Is(err, common.ErrRemoteUnavailable) {
			s.logger.Warn("Prediction unavailable", "model_type", record.ModelType, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Inference service unavailable"})
			return
		}
		s.logger.Error("Prediction failed", "model_type", record.ModelType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	resp := predictResponse{
		Result:     result.RiskLevel.Label(),
		Confidence: result.Confidence,
		Factors:    result.Factors,
		ModelUsed:  result.ModelUsed,
	}
	if record.ModelType == model.ModelRemote && result.HasNarrative() {
		narrative := result.Narrative
		resp.NovaResponse = &narrative
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTriggerRetraining(c *gin.Context) {
	job, err := s.deps.Retrainer.TriggerRetraining(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to trigger retraining", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": job.Status, "job_id": job.JobID})
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, token, int(s.cfg.Session.MaxAge.Seconds()), "/", "", s.cfg.Session.Secure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, "", -1, "/", "", s.cfg.Session.Secure, true)
}

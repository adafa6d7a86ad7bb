package serverless

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/model"
	"github.com/Veraticus/claimguard/internal/service"
)

// Response error strings.
const (
	ErrMsgInvalidRequest = "Invalid or missing request data"
	ErrMsgInvalidInput   = "Invalid input data format"
	ErrMsgInternal       = "Internal server error"
)

// LocalRequestID is reported when no lambda context is present.
const LocalRequestID = "local-test"

const flushTimeout = 5 * time.Second

// Notifier is a notification sink that can be drained before the invocation ends.
type Notifier interface {
	service.Notifier
	Flush(ctx context.Context) error
}

// SuccessBody is the 200 response payload.
type SuccessBody struct {
	ModelType       string   `json:"model_type"`
	ModelName       string   `json:"model_name"`
	Classification  string   `json:"classification"`
	RiskLevel       string   `json:"risk_level"`
	Timestamp       string   `json:"timestamp"`
	RequestID       string   `json:"request_id"`
	Factors         []string `json:"factors"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// ErrorBody is the 4xx/5xx response payload.
type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Handler scores API Gateway proxy requests.
type Handler struct {
	predictor service.Predictor
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
	registry  model.Registry
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates a handler.
func NewHandler(predictor service.Predictor, registry model.Registry, notifier Notifier, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		predictor: predictor,
		registry:  registry,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one invocation. Failures are reported in the response;
// the returned error is always nil so the platform does not retry.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer h.flush(ctx)
	defer func() {
		if r := recover(); r != nil {
			resp = h.fail(ctx, fmt.Errorf("panic: %v", r), debug.Stack())
			err = nil
		}
	}()

	if dump, mErr := json.Marshal(event); mErr == nil {
		h.logger.Info("Lambda event", "event", string(dump))
		h.notifier.Notify(ctx, "Lambda Event: "+string(dump))
	}

	req, err := Decode(event.Body)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			h.logger.Warn("Invalid input data", "error", err)
			return h.errorResponse(http.StatusBadRequest, ErrMsgInvalidInput, ""), nil
		}
		h.logger.Warn("Failed to decode request data", "error", err)
		return h.errorResponse(http.StatusBadRequest, ErrMsgInvalidRequest, ""), nil
	}

	record, err := req.Record()
	if err != nil {
		h.logger.Warn("Invalid input data", "error", err)
		return h.errorResponse(http.StatusBadRequest, ErrMsgInvalidInput, ""), nil
	}

	result, err := h.predictor.Predict(ctx, record)
	if err != nil {
		return h.fail(ctx, err, debug.Stack()), nil
	}

	body := SuccessBody{
		ModelType:       string(record.ModelType),
		ModelName:       h.registry.Name(record.ModelType),
		Classification:  string(result.Classification),
		ConfidenceScore: result.Confidence,
		RiskLevel:       string(result.RiskLevel),
		Factors:         result.Factors,
		Timestamp:       h.timestamp(),
		RequestID:       requestID(ctx),
	}

	h.logger.Info("Prediction response",
		"request_id", body.RequestID,
		"model_type", body.ModelType,
		"classification", body.Classification,
		"confidence_score", body.ConfidenceScore)
	h.notifier.Notify(ctx, fmt.Sprintf("Successful prediction: %s (%v)", body.Classification, body.ConfidenceScore))

	return jsonResponse(http.StatusOK, body), nil
}

// fail logs and notifies an unexpected error with its stack and builds the 500 response.
func (h *Handler) fail(ctx context.Context, err error, stack []byte) events.APIGatewayProxyResponse {
	h.logger.Error("Lambda error", "error", err, "stack", string(stack))
	h.notifier.Notify(ctx, fmt.Sprintf("Lambda Error: %v\nTraceback: %s", err, stack))
	return h.errorResponse(http.StatusInternalServerError, ErrMsgInternal, safeMessage(err))
}

func (h *Handler) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := h.notifier.Flush(flushCtx); err != nil {
		h.logger.Warn("Failed to flush notifications", "error", err)
	}
}

func (h *Handler) errorResponse(status int, msg, detail string) events.APIGatewayProxyResponse {
	return jsonResponse(status, ErrorBody{
		Error:     msg,
		Message:   detail,
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// safeMessage returns a message that is safe to show to callers.
func safeMessage(err error) string {
	if msg, ok := common.UserMessage(err); ok {
		return msg
	}
	if errors.Is(err, common.ErrRemoteUnavailable) {
		return "Inference service unavailable"
	}
	return "Prediction failed"
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return LocalRequestID
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"` + ErrMsgInternal + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/setting"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, callID string, customPrompt string, previewOnly bool) (string, error)
}

type Reprocessor interface {
	Reprocess(ctx context.Context, callID string, testMode bool) error
}

type CallStore interface {
	GetCallByID(ctx context.Context, callID string) (*call.Call, error)
	ListCalls(ctx context.Context, filter call.Filter) ([]call.Call, error)
}

type SettingStore interface {
	GetSetting(ctx context.Context, key string) (*setting.Setting, error)
	UpsertSetting(ctx context.Context, setting *setting.Setting) error
}

type summaryRequest struct {
	Prompt  string `json:"prompt"  validate:"max=20000"`
	Preview bool   `json:"preview"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type listCallsQuery struct {
	Status string `validate:"omitempty,oneof=pending processing completed failed skipped"`
	Limit  int    `validate:"omitempty,min=1,max=200"`
}

type settingRequest struct {
	Value string `json:"value" validate:"required"`
}

type Handler struct {
	Summaries   SummaryGenerator
	Reprocessor Reprocessor
	Calls       CallStore
	Settings    SettingStore
	// TestMode selects the deterministic reprocess path.
	TestMode bool
	Validate *validator.Validate
}

func NewHandler(
	summaries SummaryGenerator,
	reprocessor Reprocessor,
	calls CallStore,
	settings SettingStore,
	testMode bool,
) *Handler {
	return &Handler{
		Summaries:   summaries,
		Reprocessor: reprocessor,
		Calls:       calls,
		Settings:    settings,
		TestMode:    testMode,
		Validate:    validator.New(),
	}
}

// decodeBody decodes an optional JSON body into dst and validates it.
func (handler *Handler) decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(body)) > 0 {
		err = json.Unmarshal(body, dst)
		if err != nil {
			return err
		}
	}

	return handler.Validate.Struct(dst)
}

func (handler *Handler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "id")

	var req summaryRequest

	err := handler.decodeBody(r, &req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	summary, err := handler.Summaries.GenerateSummary(r.Context(), callID, req.Prompt, req.Preview)
	if err != nil {
		logging.Logger.Error("[GenerateSummary] Summary generation failed",
			zap.String("call_id", callID),
			zap.String("admin", adminSubject(r.Context())),
			zap.String("error", err.Error()),
		)
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

func (handler *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "id")

	err := handler.Reprocessor.Reprocess(r.Context(), callID, handler.TestMode)
	if err != nil {
		logging.Logger.Error("[Reprocess] Reprocess failed",
			zap.String("call_id", callID),
			zap.String("admin", adminSubject(r.Context())),
			zap.String("error", err.Error()),
		)
		writeError(w, err)

		return
	}

	logging.Logger.Info("[Reprocess] Reprocess accepted",
		zap.String("call_id", callID),
		zap.String("admin", adminSubject(r.Context())),
		zap.Bool("test_mode", handler.TestMode),
	)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (handler *Handler) ListCalls(w http.ResponseWriter, r *http.Request) {
	query := listCallsQuery{Status: r.URL.Query().Get("status")}

	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a number"})
			return
		}

		query.Limit = limit
	}

	err := handler.Validate.Struct(query)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	calls, err := handler.Calls.ListCalls(r.Context(), call.Filter{Status: call.Status(query.Status), Limit: query.Limit})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calls)
}

func (handler *Handler) GetCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "id")

	record, err := handler.Calls.GetCallByID(r.Context(), callID)
	if err != nil {
		if database.IsRecordNotFound(err) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "call not found"})
			return
		}

		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (handler *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	record, err := handler.Settings.GetSetting(r.Context(), key)
	if err != nil {
		if database.IsRecordNotFound(err) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "setting not found"})
			return
		}

		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (handler *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req settingRequest

	err := handler.decodeBody(r, &req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	record := &setting.Setting{Key: key, Value: req.Value}

	err = handler.Settings.UpsertSetting(r.Context(), record)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Logger.Info("[PutSetting] Setting updated",
		zap.String("key", key),
		zap.String("admin", adminSubject(r.Context())),
	)
	writeJSON(w, http.StatusOK, record)
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

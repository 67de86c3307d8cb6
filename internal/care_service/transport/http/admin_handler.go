package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/boostgo/customercare/internal/care_service/app"
	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

const defaultListLimit = 100

// AdminHandler exposes the operator surface: message log, settings, polling
// control.
type AdminHandler struct {
	messages domain.MessageRepository
	settings domain.SettingsRepository
	poller   *app.Poller
	logger   *slog.Logger
	validate *validator.Validate
}

func NewAdminHandler(
	messages domain.MessageRepository,
	settings domain.SettingsRepository,
	poller *app.Poller,
	logger *slog.Logger,
	validate *validator.Validate,
) *AdminHandler {
	return &AdminHandler{
		messages: messages,
		settings: settings,
		poller:   poller,
		logger:   logger.With("handler", "admin"),
		validate: validate,
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/messages", h.ListMessages)
		r.Delete("/messages", h.ClearMessages)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
		r.Get("/polling", h.PollingStatus)
		r.Post("/polling/start", h.StartPolling)
		r.Post("/polling/stop", h.StopPolling)
	})
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var status *core_domain.MessageStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := core_domain.MessageStatus(s)
		switch st {
		case core_domain.MessageStatusSending, core_domain.MessageStatusSent,
			core_domain.MessageStatusDelivered, core_domain.MessageStatusFailed:
			status = &st
		default:
			http.Error(w, "unknown status: "+s, http.StatusBadRequest)
			return
		}
	}

	limit := defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}

	messages, err := h.messages.List(ctx, status, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list messages", "error", err)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []core_domain.Message{}
	}
	writeJSON(w, http.StatusOK, ListMessagesResponse{Messages: messages})
}

func (h *AdminHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	if err := h.messages.DeleteAll(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to clear message log", "error", err)
		http.Error(w, "failed to clear message log", http.StatusInternalServerError)
		return
	}
	logger.InfoContext(ctx, "message log cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	cfg, err := h.settings.Get(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load settings", "error", err)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse(cfg))
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	var req UpdateSettingsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		http.Error(w, "validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg := core_domain.Settings(req)
	if cfg.MessageTemplate == "" {
		cfg.MessageTemplate = core_domain.DefaultMessageTemplate
	}
	if err := h.settings.Put(ctx, cfg); err != nil {
		logger.ErrorContext(ctx, "failed to store settings", "error", err)
		http.Error(w, "failed to store settings", http.StatusInternalServerError)
		return
	}
	logger.InfoContext(ctx, "settings updated", "test_mode", cfg.TestModeEnabled)
	writeJSON(w, http.StatusOK, SettingsResponse(cfg))
}

func (h *AdminHandler) PollingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PollingStatusResponse{Running: h.poller.IsRunning()})
}

func (h *AdminHandler) StartPolling(w http.ResponseWriter, r *http.Request) {
	started := h.poller.Start()
	if !started {
		h.logger.InfoContext(r.Context(), "polling already running")
	}
	writeJSON(w, http.StatusOK, PollingStatusResponse{Running: true})
}

func (h *AdminHandler) StopPolling(w http.ResponseWriter, r *http.Request) {
	stopped := h.poller.Stop()
	if !stopped {
		h.logger.InfoContext(r.Context(), "polling already stopped")
	}
	writeJSON(w, http.StatusOK, PollingStatusResponse{Running: false})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

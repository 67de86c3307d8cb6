package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/boostgo/customercare/internal/care_service/app"
	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/platform/messagebroker"
)

// CallbackHandler accepts gateway callbacks, validates them and hands them
// to NATS. Processing happens in the queue consumers; the gateway only needs
// a fast acknowledgement.
type CallbackHandler struct {
	natsClient messagebroker.NATSClient
	logger     *slog.Logger
	validate   *validator.Validate
}

func NewCallbackHandler(nc messagebroker.NATSClient, logger *slog.Logger, validate *validator.Validate) *CallbackHandler {
	return &CallbackHandler{
		natsClient: nc,
		logger:     logger.With("handler", "callback"),
		validate:   validate,
	}
}

func (h *CallbackHandler) RegisterRoutes(r chi.Router) {
	r.Route("/callbacks/gateway/{line_id}", func(r chi.Router) {
		r.Post("/sent", h.HandleSent)
		r.Post("/delivered", h.HandleDelivered)
		r.Post("/incoming", h.HandleIncoming)
	})
}

func (h *CallbackHandler) HandleSent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	lineID := chi.URLParam(r, "line_id")
	var req SentCallbackRequest
	if !h.decodeAndValidate(w, r, logger, &req) {
		return
	}

	ev := domain.SentEvent{
		LineID: lineID,
		Ref: domain.PartRef{
			MessageID: req.MessageID,
			PartNo:    req.PartNo,
			LastPart:  req.LastPart,
		},
		ResultCode: req.ResultCode,
	}
	h.publish(w, r, logger, app.SubjectSentRaw, ev)
}

func (h *CallbackHandler) HandleDelivered(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	lineID := chi.URLParam(r, "line_id")
	var req DeliveryCallbackRequest
	if !h.decodeAndValidate(w, r, logger, &req) {
		return
	}

	ev := domain.DeliveryEvent{
		LineID:    lineID,
		MessageID: req.MessageID,
		Status:    req.Status,
	}
	h.publish(w, r, logger, app.SubjectDeliveredRaw, ev)
}

func (h *CallbackHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	lineID := chi.URLParam(r, "line_id")
	var req IncomingSMSRequest
	if !h.decodeAndValidate(w, r, logger, &req) {
		return
	}

	sms := domain.IncomingSMS{
		LineID: lineID,
		Sender: req.Sender,
		Body:   req.Body,
	}
	h.publish(w, r, logger, app.SubjectIncomingRaw, sms)
}

func (h *CallbackHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, req any) bool {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read callback body", "error", err)
		http.Error(w, "failed to read request body", http.StatusInternalServerError)
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, req); err != nil {
		logger.WarnContext(ctx, "invalid callback JSON", "error", err)
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "callback validation failed", "error", err)
		http.Error(w, "validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *CallbackHandler) publish(w http.ResponseWriter, r *http.Request, logger *slog.Logger, subject string, payload any) {
	ctx := r.Context()
	data, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorContext(ctx, "failed to marshal callback event", "subject", subject, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.natsClient.Publish(ctx, subject, data); err != nil {
		logger.ErrorContext(ctx, "failed to publish callback event", "subject", subject, "error", err)
		http.Error(w, "failed to queue event", http.StatusInternalServerError)
		return
	}
	logger.InfoContext(ctx, "callback queued", "subject", subject)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}

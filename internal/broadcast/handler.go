package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"livestream-controller/internal/platform/metrics"
)

const maxBodyBytes = 1 << 20

// Response is a transport-neutral reply: a status code and a JSON-encodable body.
type Response struct {
	StatusCode int
	Body       any
}

// JSON encodes the body.
func (r Response) JSON() []byte {
	b, err := json.Marshal(r.Body)
	if err != nil {
		return []byte(`{"error":"failed to encode response"}`)
	}
	return b
}

type errorBody struct {
	Error string `json:"error"`
}

type createdBody struct {
	Status string        `json:"status"`
	Result *CreateResult `json:"result"`
}

type endedBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type channelBody struct {
	ChannelID string `json:"channel_id"`
}

// Handler maps inbound action requests onto the Service.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Dispatch decodes raw, validates it and runs the requested action.
// It never returns an error; every failure is mapped to a Response.
func (h *Handler) Dispatch(ctx context.Context, raw []byte) Response {
	req, err := DecodeRequest(raw)
	if err != nil {
		h.log.Debug("invalid request body", slog.String("error", err.Error()))
		h.observe("unknown", "rejected")
		return Response{StatusCode: http.StatusBadRequest, Body: errorBody{Error: "Invalid JSON body"}}
	}

	if !req.Action.Valid() {
		h.log.Info("request rejected", slog.String("action", string(req.Action)))
		h.observe("unknown", "rejected")
		verr := &ValidationError{Field: "action", Value: string(req.Action)}
		return Response{StatusCode: http.StatusBadRequest, Body: errorBody{Error: verr.Error()}}
	}

	// Reject a bad privacy status before the credential is touched.
	if req.Action == ActionCreate && !req.PrivacyStatus.Valid() {
		h.observe(string(req.Action), "rejected")
		verr := &ValidationError{Field: "privacy_status", Value: string(req.PrivacyStatus)}
		return Response{StatusCode: http.StatusBadRequest, Body: errorBody{Error: verr.Error()}}
	}

	log := h.log.With(
		slog.String("action", string(req.Action)),
		slog.String("workflow_name", req.WorkflowName),
		slog.String("cam_name", req.CamName))
	log.Info("action requested")

	switch req.Action {
	case ActionCreate:
		res, err := h.svc.CreateBroadcastAndBindStream(ctx, req.CamName, req.WorkflowName, req.PrivacyStatus)
		if err != nil {
			return h.fail(log, req, err)
		}
		h.observe(string(req.Action), "ok")
		if h.metrics != nil {
			h.metrics.IncBroadcastsCreated()
			if res.PlaylistAddStatus != "added" {
				h.metrics.IncPlaylistAddFailures()
			}
		}
		log.Info("broadcast created", slog.String("broadcast_id", res.BroadcastID), slog.String("playlist_id", res.PlaylistID))
		return Response{StatusCode: http.StatusOK, Body: createdBody{Status: "created", Result: res}}

	default:
		ended, err := h.svc.EndActiveBroadcastsForDevice(ctx, req.WorkflowName)
		if h.metrics != nil {
			h.metrics.AddBroadcastsEnded(len(ended))
		}
		if err != nil {
			return h.fail(log.With(slog.Any("ended", ended)), req, err)
		}
		h.observe(string(req.Action), "ok")
		log.Info("broadcasts ended", slog.Int("count", len(ended)))
		return Response{StatusCode: http.StatusOK, Body: endedBody{
			Status:  "ended",
			Message: req.WorkflowName + " ended successfully",
		}}
	}
}

func (h *Handler) fail(log *slog.Logger, req ActionRequest, err error) Response {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrValidation) {
		status = http.StatusBadRequest
	}
	log.Error("action failed", slog.String("error", err.Error()))
	h.observe(string(req.Action), "failed")
	return Response{StatusCode: status, Body: errorBody{
		Error: fmt.Sprintf("Error during '%s' for device '%s': %v", req.Action, req.WorkflowName, err),
	}}
}

func (h *Handler) observe(action, outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveAction(action, outcome)
	}
}

// ServeAction handles POST /. The body is an action request or a trigger envelope.
func (h *Handler) ServeAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, Response{StatusCode: http.StatusBadRequest, Body: errorBody{Error: "Invalid JSON body"}})
		return
	}
	writeJSON(w, h.Dispatch(r.Context(), raw))
}

// GetChannel handles GET /channel, reporting the authenticated channel id.
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := h.svc.ChannelID(r.Context())
	if err != nil {
		h.log.Error("channel lookup failed", slog.String("error", err.Error()))
		writeJSON(w, Response{StatusCode: http.StatusInternalServerError, Body: errorBody{Error: err.Error()}})
		return
	}
	writeJSON(w, Response{StatusCode: http.StatusOK, Body: channelBody{ChannelID: id}})
}

func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.JSON())
}

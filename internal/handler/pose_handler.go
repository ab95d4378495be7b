package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/one2zero1/janejase-backend/internal/middleware"
	"github.com/one2zero1/janejase-backend/internal/model"
)

// PoseServiceInterface は姿勢ハンドラーが必要とするサービスインターフェース。
type PoseServiceInterface interface {
	// Create は新しい姿勢セッションを作成しIDを返す。
	Create(ctx context.Context, userID string, measurement model.Document, endedAt *time.Time) (string, error)
	// End はセッションの終了時刻を記録する。
	End(ctx context.Context, poseID string, endedAt time.Time) error
	// RecordWarning は警告イベントを記録し累積統計を返す。
	RecordWarning(ctx context.Context, poseID string, occurredAt time.Time, durationSec float64, averages map[string]float64, status model.Document) (*model.WarningStats, error)
}

// PoseHandler は姿勢セッションのHTTPハンドラー。
type PoseHandler struct {
	service PoseServiceInterface
}

// NewPoseHandler はPoseHandlerを生成する。
func NewPoseHandler(service PoseServiceInterface) *PoseHandler {
	return &PoseHandler{service: service}
}

// createPoseRequest はセッション作成リクエストのボディ。
type createPoseRequest struct {
	Measurement json.RawMessage `json:"measurement"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
}

// createPoseResponse はセッション作成のレスポンス。
type createPoseResponse struct {
	ID string `json:"id"`
}

// Create はセッション作成を処理する。
// POST /pose/create
func (h *PoseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createPoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	id, err := h.service.Create(r.Context(), userID, model.Document(req.Measurement), req.EndedAt)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPoseResponse{ID: id})
}

// warningRequest は警告イベント記録リクエストのボディ。
type warningRequest struct {
	PoseID    string             `json:"pose_id"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
	Duration  float64            `json:"duration"`
	Averages  map[string]float64 `json:"averages"`
	Status    json.RawMessage    `json:"status"`
}

// Warning は警告イベントの記録を処理し、セッションの累積統計を返す。
// POST /pose/warning
func (h *PoseHandler) Warning(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req warningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	var occurredAt time.Time
	if req.Timestamp != nil {
		occurredAt = *req.Timestamp
	}

	stats, err := h.service.RecordWarning(r.Context(), req.PoseID, occurredAt, req.Duration, req.Averages, model.Document(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// endPoseRequest はセッション終了リクエストのボディ。
type endPoseRequest struct {
	PoseID  string     `json:"pose_id"`
	EndedAt *time.Time `json:"ended_at,omitempty"`
}

// End はセッション終了を処理する。
// PATCH /pose/end
func (h *PoseHandler) End(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	var req endPoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestBody(w)
		return
	}

	var endedAt time.Time
	if req.EndedAt != nil {
		endedAt = *req.EndedAt
	}

	if err := h.service.End(r.Context(), req.PoseID, endedAt); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

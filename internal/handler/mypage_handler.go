package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/one2zero1/janejase-backend/internal/middleware"
	"github.com/one2zero1/janejase-backend/internal/model"
)

// MypageServiceInterface はマイページハンドラーが必要とするサービスインターフェース。
type MypageServiceInterface interface {
	// ListHistory はユーザーのセッション履歴を新しい順に返す。
	ListHistory(ctx context.Context, userID string) ([]model.PoseSummary, error)
	// DeleteHistory はセッションとその警告イベントを削除する。
	DeleteHistory(ctx context.Context, poseID, requesterID string) error
}

// MypageHandler はマイページのHTTPハンドラー。
type MypageHandler struct {
	service MypageServiceInterface
}

// NewMypageHandler はMypageHandlerを生成する。
func NewMypageHandler(service MypageServiceInterface) *MypageHandler {
	return &MypageHandler{service: service}
}

// History はセッション履歴の取得を処理する。
// パスのuser_idはトークンの主体と一致する必要がある。
// GET /mypage/history/{user_id}
func (h *MypageHandler) History(w http.ResponseWriter, r *http.Request) {
	requesterID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	userID := chi.URLParam(r, "user_id")
	if userID != requesterID {
		// 他人の履歴へのアクセスは拒否する
		handleServiceError(w, model.NewForbiddenError())
		return
	}

	summaries, err := h.service.ListHistory(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Delete はセッション履歴の削除を処理する。
// DELETE /mypage/history/{pose_id}
func (h *MypageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requesterID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	poseID := chi.URLParam(r, "pose_id")

	if err := h.service.DeleteHistory(r.Context(), poseID, requesterID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "success"})
}

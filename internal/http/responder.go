package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

var (
	errBadRequestBody      = errors.New("無効なリクエスト形式です。")
	errInvalidBookingID    = errors.New("無効な予約 ID です。")
	errInvalidRequestID    = errors.New("無効な申請 ID です。")
	errMissingSessionToken = errors.New("認証トークンを指定してください")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application sentinels into the API error
// contract: validation 400, authorization 403, missing resources 404, slot
// and state conflicts 409, everything else a generic 500.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "この操作を実行する権限がありません。",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "指定されたリソースが見つかりません。"})
	case errors.Is(err, application.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "BOOKING_CONFLICT",
			Message:   "指定された時間帯は既に予約されています。",
		})
	case errors.Is(err, application.ErrInvalidStateTransition):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "REQUEST_ALREADY_RESOLVED",
			Message:   "この申請は既に処理されています。",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "既に登録されています。"})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
				Message: "入力内容に誤りがあります。",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		// Storage internals never leak to clients.
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusUnauthorized:
		return "認証が必要です。"
	case http.StatusForbidden:
		return "この操作を実行する権限がありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusTooManyRequests:
		return "アクセスが集中しています。しばらくしてから再度お試しください。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "a valid email address is required":
		return "有効なメールアドレスを指定してください。"
	case "password must be at least 8 characters":
		return "パスワードは 8 文字以上で指定してください。"
	case "first name is required":
		return "名は必須です。"
	case "last name is required":
		return "姓は必須です。"
	case "name is required":
		return "名称は必須です。"
	case "capacity must be positive":
		return "収容人数は正の整数で指定してください。"
	case "room id is required":
		return "会議室 ID は必須です。"
	case "room does not exist":
		return "指定された会議室は存在しません。"
	case "room is not available":
		return "指定された会議室は利用できません。"
	case "date must use the YYYY-MM-DD format":
		return "日付は YYYY-MM-DD 形式で指定してください。"
	case "start time must use the HH:MM format":
		return "開始時刻は HH:MM 形式で指定してください。"
	case "end time must use the HH:MM format":
		return "終了時刻は HH:MM 形式で指定してください。"
	case "end time must be after start time":
		return "終了時刻は開始時刻より後である必要があります。"
	case "purpose is required":
		return "利用目的は必須です。"
	case "team is required for team bookings":
		return "チーム予約にはチーム名が必要です。"
	case "booking type must be personal or team":
		return "予約種別は personal または team を指定してください。"
	case "booking id is required":
		return "予約 ID は必須です。"
	case "conflicting booking id is required":
		return "対象の予約 ID は必須です。"
	case "reason is required":
		return "申請理由は必須です。"
	case "role must be user or admin":
		return "ロールは user または admin を指定してください。"
	case "cannot deactivate own account":
		return "自分自身のアカウントは無効化できません。"
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

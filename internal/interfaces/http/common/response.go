package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"go.uber.org/zap"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Warn("encode json response", zap.Error(err))
	}
}

// ErrorResponse は全エンドポイント共通のエラー形式。
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// WriteError maps application errors to HTTP status codes with a Korean message.
// Unexpected errors are logged and reported as 500.
func WriteError(logger *zap.Logger, w http.ResponseWriter, err error) {
	status, body := ErrorStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	WriteJSON(logger, w, status, body)
}

// ErrorStatus はエラーに対応するステータスコードとレスポンス本文を返す。
func ErrorStatus(err error) (int, ErrorResponse) {
	var validation *domain.ValidationError
	var persistence *application.PersistenceError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{Error: validation.Message, Field: validation.Field}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "면접 기록을 찾을 수 없습니다."}
	case errors.Is(err, application.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "면접 작성 세션이 만료되었거나 존재하지 않습니다."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "권한이 없습니다."}
	case errors.As(err, &persistence):
		return http.StatusBadGateway, ErrorResponse{Error: "저장소 처리에 실패했습니다.", Reason: persistence.Err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "처리 중 오류가 발생했습니다."}
}

package records

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/interview-desk/api/internal/infrastructure/export"
	"github.com/sngm3741/interview-desk/api/internal/interfaces/http/common"
	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/search"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type questionResponse struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Checkpoints []string `json:"checkpoints,omitempty"`
}

type sectionResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Condition       string             `json:"condition"`
	Questions       []questionResponse `json:"questions"`
	Notices         []string           `json:"notices,omitempty"`
	RequiresConsent bool               `json:"requiresConsent"`
}

type stageResponse struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Sections []sectionResponse `json:"sections"`
}

// principal は認証ミドルウェアが詰めたユーザーを取り出す。無ければ 401 を書いて false を返す。
func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (application.Principal, bool) {
	user, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(h.logger, w, http.StatusUnauthorized, common.ErrorResponse{Error: "로그인이 필요합니다."})
		return application.Principal{}, false
	}
	return user.Principal(), true
}

func (h *Handler) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, meResponse{
			ID:      principal.ID,
			Name:    principal.Name,
			Role:    string(principal.Role),
			IsAdmin: principal.IsAdmin(),
		})
	}
}

func (h *Handler) questionnaireHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		q := h.forms.Questionnaire()
		stages := make([]stageResponse, 0, len(q.Stages))
		for _, stage := range q.Stages {
			sections := make([]sectionResponse, 0, len(stage.Sections))
			for _, section := range stage.Sections {
				questions := make([]questionResponse, 0, len(section.Questions))
				for _, question := range section.Questions {
					questions = append(questions, questionResponse{ID: question.ID, Text: question.Text, Checkpoints: question.Checkpoints})
				}
				sections = append(sections, sectionResponse{
					ID:              section.ID,
					Title:           section.Title,
					Condition:       section.Condition.String(),
					Questions:       questions,
					Notices:         section.Notices,
					RequiresConsent: section.RequiresConsent,
				})
			}
			stages = append(stages, stageResponse{ID: stage.ID, Title: stage.Title, Sections: sections})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stages": stages})
	}
}

func (h *Handler) recordListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		records, err := h.records.List(ctx, principal, r.URL.Query().Get("q"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		items := make([]recordListItem, 0, len(records))
		for _, record := range records {
			items = append(items, h.recordToListItem(record))
		}
		groups := search.GroupByInitial(records)
		initials := make([]initialCountResponse, 0, len(groups))
		for _, group := range groups {
			initials = append(initials, initialCountResponse{Initial: group.Initial, Count: group.Count})
		}

		common.WriteJSON(h.logger, w, http.StatusOK, recordListResponse{Items: items, Initials: initials, Total: len(items)})
	}
}

func (h *Handler) recordExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		records, err := h.records.List(ctx, principal, r.URL.Query().Get("q"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteRecords(&buf, h.forms.Questionnaire(), records, h.location); err != nil {
			common.WriteError(h.logger, w, fmt.Errorf("export records: %w", err))
			return
		}
		h.metrics.Exports.Inc()

		filename := fmt.Sprintf("interview-records-%s.xlsx", time.Now().In(h.location).Format("20060102"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Warn("write export response", zap.Error(err))
		}
	}
}

func (h *Handler) recordDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		record, err := h.records.Detail(ctx, principal, id)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, h.recordToResponse(*record))
	}
}

func (h *Handler) recordDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if r.URL.Query().Get("confirm") != "true" {
			common.WriteError(h.logger, w, &domain.ValidationError{Field: "confirm", Message: "삭제하려면 확인이 필요합니다. 삭제된 기록은 복구할 수 없습니다."})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		if err := h.records.Delete(ctx, principal, id); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		h.logger.Info("interview record deleted", zap.String("recordId", id), zap.String("principal", principal.ID))
		w.WriteHeader(http.StatusNoContent)
	}
}

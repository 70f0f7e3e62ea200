package records

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/interview-desk/api/internal/interfaces/http/common"
	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/sngm3741/interview-desk/api/internal/interview/form"
	"go.uber.org/zap"
)

var errMalformedRequest = &domain.ValidationError{Field: "body", Message: "요청 형식이 올바르지 않습니다."}

// decodeJSON reads an optional JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, common.MaxJSONRequestBody)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errMalformedRequest
}

func (h *Handler) sessionStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		var req sessionStartRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		snapshot, err := h.forms.Start(ctx, principal, req.RecordID)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusCreated, h.snapshotToResponse(snapshot))
	}
}

func (h *Handler) sessionGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		snapshot, err := h.forms.Get(r.Context(), principal, chi.URLParam(r, "sid"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, h.snapshotToResponse(snapshot))
	}
}

func (h *Handler) sessionEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		var req eventRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		event, err := req.toEvent()
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		// 最終ステージの advance は保存を伴う
		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		snapshot, err := h.forms.Apply(ctx, principal, chi.URLParam(r, "sid"), event)
		if _, isAdvance := event.(form.Advance); isAdvance {
			switch {
			case err == nil && snapshot.Message != "":
				h.observeSave(nil)
			case err != nil && !errors.Is(err, application.ErrSessionNotFound):
				h.observeSave(err)
			}
		}
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, h.snapshotToResponse(snapshot))
	}
}

func (h *Handler) sessionResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxResumeBytes+common.MultipartOverhead)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				common.WriteError(h.logger, w, domain.ResumeTooLarge(h.maxResumeBytes))
				return
			}
			common.WriteError(h.logger, w, &domain.ValidationError{Field: "file", Message: "첨부할 파일을 선택해주세요."})
			return
		}
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, h.maxResumeBytes+1))
		if err != nil {
			common.WriteError(h.logger, w, errMalformedRequest)
			return
		}
		resume, err := domain.NewResume(header.Filename, header.Header.Get("Content-Type"), content, h.maxResumeBytes)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		snapshot, err := h.forms.Apply(r.Context(), principal, chi.URLParam(r, "sid"), form.AttachResume{Resume: *resume})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		h.logger.Debug("resume attached",
			zap.String("sessionId", snapshot.SessionID),
			zap.String("fileName", resume.FileName),
			zap.Int("bytes", len(content)),
		)
		common.WriteJSON(h.logger, w, http.StatusOK, h.snapshotToResponse(snapshot))
	}
}

func (h *Handler) sessionSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		var req sessionSaveRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.storeTimeout)
		defer cancel()

		snapshot, err := h.forms.Save(ctx, principal, chi.URLParam(r, "sid"), req.Close)
		if !errors.Is(err, application.ErrSessionNotFound) {
			h.observeSave(err)
		}
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, h.snapshotToResponse(snapshot))
	}
}

func (h *Handler) sessionAnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.aiTimeout+h.storeTimeout)
		defer cancel()

		snapshot, err := h.forms.Analyze(ctx, principal, chi.URLParam(r, "sid"))
		if err != nil {
			if !errors.Is(err, application.ErrSessionNotFound) && !errors.Is(err, domain.ErrCandidateNameRequired) {
				h.metrics.Analyses.WithLabelValues("save_failed").Inc()
			}
			common.WriteError(h.logger, w, err)
			return
		}
		h.metrics.Analyses.WithLabelValues(analysisOutcome(snapshot.State.AISummary)).Inc()
		common.WriteJSON(h.logger, w, http.StatusOK, h.snapshotToResponse(snapshot))
	}
}

func (h *Handler) sessionCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.principal(w, r)
		if !ok {
			return
		}
		if err := h.forms.Cancel(r.Context(), principal, chi.URLParam(r, "sid")); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) observeSave(err error) {
	outcome := "saved"
	switch {
	case err == nil:
	case domain.IsValidation(err):
		outcome = "invalid"
	default:
		outcome = "failed"
	}
	h.metrics.RecordSaves.WithLabelValues(outcome).Inc()
}

func analysisOutcome(summary string) string {
	switch strings.TrimSpace(summary) {
	case application.NothingToAnalyzeSummary:
		return "no_answers"
	case application.UnavailableSummary:
		return "unavailable"
	case application.FailedSummary:
		return "failed"
	}
	return "ok"
}

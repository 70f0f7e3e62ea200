// Package records は面接記録と入力フォームセッションの HTTP エンドポイントを提供する。
package records

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/metrics"
	"go.uber.org/zap"
)

// Handler wires record and form session endpoints to application services.
type Handler struct {
	logger         *zap.Logger
	records        application.RecordService
	forms          application.FormService
	metrics        *metrics.Metrics
	location       *time.Location
	maxResumeBytes int64
	storeTimeout   time.Duration
	aiTimeout      time.Duration
}

// Config provides dependencies for Handler.
type Config struct {
	Logger         *zap.Logger
	Records        application.RecordService
	Forms          application.FormService
	Metrics        *metrics.Metrics
	Location       *time.Location
	MaxResumeBytes int64
	// StoreTimeout は記録の読み書きリクエスト 1 件あたりの上限。
	StoreTimeout time.Duration
	// AITimeout bounds the analyze request, which includes the AI call and the auto-save.
	AITimeout time.Duration
}

// NewHandler constructs the handler set.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		logger:         cfg.Logger,
		records:        cfg.Records,
		forms:          cfg.Forms,
		metrics:        cfg.Metrics,
		location:       cfg.Location,
		maxResumeBytes: cfg.MaxResumeBytes,
		storeTimeout:   cfg.StoreTimeout,
		aiTimeout:      cfg.AITimeout,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.location == nil {
		h.location = time.UTC
	}
	if h.maxResumeBytes <= 0 {
		h.maxResumeBytes = 5 << 20
	}
	if h.storeTimeout <= 0 {
		h.storeTimeout = 5 * time.Second
	}
	if h.aiTimeout <= 0 {
		h.aiTimeout = 60 * time.Second
	}
	return h
}

// Register mounts routes onto an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/me", h.meHandler())
	r.Get("/questionnaire", h.questionnaireHandler())

	r.Get("/records", h.recordListHandler())
	r.Get("/records/export", h.recordExportHandler())
	r.Get("/records/{id}", h.recordDetailHandler())
	r.Delete("/records/{id}", h.recordDeleteHandler())

	r.Post("/sessions", h.sessionStartHandler())
	r.Get("/sessions/{sid}", h.sessionGetHandler())
	r.Delete("/sessions/{sid}", h.sessionCancelHandler())
	r.Post("/sessions/{sid}/events", h.sessionEventHandler())
	r.Post("/sessions/{sid}/resume", h.sessionResumeHandler())
	r.Post("/sessions/{sid}/save", h.sessionSaveHandler())
	r.Post("/sessions/{sid}/analyze", h.sessionAnalyzeHandler())
}

// Package messenger はメッセンジャーゲートウェイ経由で管理者へ通知する。
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/application"
	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"go.uber.org/zap"
)

// FailureRecorder は再送できなかった通知を保存する。
type FailureRecorder interface {
	Record(ctx context.Context, target string, payload map[string]string, cause error, attempts int) error
}

// Config はゲートウェイへの接続設定。
type Config struct {
	Endpoint     string
	Destination  string
	Timeout      time.Duration
	AdminBaseURL string
	Attempts     int
	RetryDelay   time.Duration
}

// Notifier implements application.Notifier by posting to the messenger gateway.
type Notifier struct {
	cfg        Config
	httpClient *http.Client
	failures   FailureRecorder
	logger     *zap.Logger
}

var _ application.Notifier = (*Notifier)(nil)

// New returns nil when the endpoint or destination is not configured.
func New(cfg Config, failures FailureRecorder, logger *zap.Logger) *Notifier {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Destination) == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		failures:   failures,
		logger:     logger,
	}
}

// RecordCreated は新しい面接記録を管理者チャンネルに知らせる。失敗は保存とログのみ。
func (n *Notifier) RecordCreated(ctx context.Context, record domain.InterviewRecord) {
	if n == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	message := BuildRecordMessage(n.cfg.AdminBaseURL, record)
	identifier := strings.TrimSpace(record.OwnerID)
	if identifier == "" {
		identifier = "admin"
	}

	err := n.sendWithRetry(ctx, identifier, message)
	if err == nil {
		return
	}
	n.logger.Warn("admin notification failed",
		zap.String("recordId", record.ID),
		zap.Int("attempts", n.cfg.Attempts),
		zap.Error(err),
	)

	if n.failures == nil {
		return
	}
	payload := map[string]string{
		"recordId":      record.ID,
		"ownerId":       record.OwnerID,
		"candidateName": record.BasicInfo.CandidateName,
		"position":      record.BasicInfo.Position,
		"store":         record.BasicInfo.Store,
		"message":       message,
	}
	// 停止時に送信を打ち切られても失敗記録は残す
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if recErr := n.failures.Record(recordCtx, "admin_notification", payload, err, n.cfg.Attempts); recErr != nil {
		n.logger.Error("persist failed notification", zap.String("recordId", record.ID), zap.Error(recErr))
	}
}

// BuildRecordMessage は管理者向け通知本文を組み立てる。
func BuildRecordMessage(adminBaseURL string, record domain.InterviewRecord) string {
	info := record.BasicInfo
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("**%s** 지원자의 면접 기록이 등록되었습니다.\n", info.CandidateName))

	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			builder.WriteString(fmt.Sprintf("- %s: %s\n", label, value))
		}
	}
	add("지원 포지션", info.Position)
	add("매장", info.Store)
	add("면접일", info.InterviewDate)
	add("면접관", info.InterviewerName)

	if record.ID != "" && strings.TrimSpace(adminBaseURL) != "" {
		builder.WriteString(fmt.Sprintf("[관리 화면에서 확인](%s/%s)\n", strings.TrimRight(adminBaseURL, "/"), record.ID))
	}
	return builder.String()
}

func (n *Notifier) sendWithRetry(ctx context.Context, userID, text string) error {
	var lastErr error
	for i := 0; i < n.cfg.Attempts; i++ {
		if err := n.send(ctx, userID, text); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if n.cfg.RetryDelay > 0 && i < n.cfg.Attempts-1 {
			select {
			case <-time.After(n.cfg.RetryDelay):
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			}
		}
	}
	return lastErr
}

func (n *Notifier) send(ctx context.Context, userID, text string) error {
	body, err := json.Marshal(map[string]string{
		"userId":      userID,
		"text":        text,
		"destination": strings.TrimSpace(n.cfg.Destination),
	})
	if err != nil {
		return fmt.Errorf("marshal messenger payload: %w", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(n.cfg.Endpoint, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create messenger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("messenger error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}

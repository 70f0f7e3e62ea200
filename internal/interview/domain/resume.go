package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Resume は履歴書ファイルを data URL としてインラインで保持する。
type Resume struct {
	FileName string
	DataURL  string
}

// NewResume encodes content as a self-contained data URL. contentType falls back to sniffing.
func NewResume(fileName, contentType string, content []byte, maxBytes int64) (*Resume, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, &ValidationError{Field: "resume", Message: "파일 이름이 없습니다."}
	}
	if len(content) == 0 {
		return nil, &ValidationError{Field: "resume", Message: "빈 파일은 첨부할 수 없습니다."}
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, ResumeTooLarge(maxBytes)
	}
	mime := strings.TrimSpace(contentType)
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(content)
	}
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return &Resume{
		FileName: name,
		DataURL:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content),
	}, nil
}

// ResumeTooLarge は添付ファイルのサイズ超過エラーを返す。
func ResumeTooLarge(maxBytes int64) *ValidationError {
	limit := fmt.Sprintf("%dMB", maxBytes>>20)
	if maxBytes < 1<<20 {
		limit = fmt.Sprintf("%dKB", maxBytes>>10)
	}
	return &ValidationError{Field: "resume", Message: fmt.Sprintf("파일 크기는 최대 %s까지 가능합니다.", limit)}
}

// Decode は data URL を MIME タイプと本文に戻す。
func (r Resume) Decode() (string, []byte, error) {
	rest, ok := strings.CutPrefix(r.DataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("resume is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("resume data URL has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("resume data URL is not base64 encoded")
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode resume: %w", err)
	}
	return mime, content, nil
}

package records

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// summaryMarkdown renders AI summaries. Raw HTML in the model output is not passed through.
var summaryMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

func (h *Handler) renderSummary(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := summaryMarkdown.Convert([]byte(summary), &buf); err != nil {
		h.logger.Warn("render summary markdown", zap.Error(err))
		return ""
	}
	return buf.String()
}

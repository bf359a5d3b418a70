package preview

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/scribe-press/scribe/internal/buildlog"
)

// HistorySource supplies recent build records for the status page.
// *buildlog.Store satisfies it.
type HistorySource interface {
	Recent(ctx context.Context, n int) ([]buildlog.Record, error)
}

const statusHistoryLimit = 20

// statusHandler renders a small build-history page. The summary is composed
// as markdown and converted with goldmark.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	md := s.statusMarkdown(r.Context())

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(md), &html); err != nil {
		s.logger.Warn("Failed to render status page", "error", err)
		http.Error(w, "status page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html.Bytes())
}

func (s *Server) statusMarkdown(ctx context.Context) string {
	var buf bytes.Buffer
	buf.WriteString("# Scribe preview\n\n")
	fmt.Fprintf(&buf, "Serving `%s`\n\n", s.dir)

	if s.history == nil {
		buf.WriteString("No build history available for this session.\n")
		return buf.String()
	}

	records, err := s.history.Recent(ctx, statusHistoryLimit)
	if err != nil {
		s.logger.Warn("Failed to read build history", "error", err)
		buf.WriteString("Build history could not be read.\n")
		return buf.String()
	}
	if len(records) == 0 {
		buf.WriteString("No builds recorded yet.\n")
		return buf.String()
	}

	buf.WriteString("## Recent builds\n\n")
	buf.WriteString("| Time | Target | Format | Duration | Result |\n")
	buf.WriteString("|------|--------|--------|----------|--------|\n")
	for _, rec := range records {
		result := "ok"
		if !rec.Success {
			result = "failed: " + rec.Error
		}
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | %s |\n",
			rec.Started.Format(time.RFC3339), rec.Target, rec.Format, rec.Duration, result)
	}
	return buf.String()
}

package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/inventory/internal/service"
)

type reportHandler struct {
	reportSvc   service.ReportService
	handleError errorHandlerFunc
}

func newReportHandler(reportSvc service.ReportService, handleError errorHandlerFunc) *reportHandler {
	return &reportHandler{
		reportSvc:   reportSvc,
		handleError: handleError,
	}
}

// GetSummary streams the category summary in the same CSV layout the report
// command writes to disk.
func (h *reportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "reportHandler.GetSummary")
	defer span.End()

	summaries, err := h.reportSvc.Summaries(ctx)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("report service summaries: %w", err))
		return
	}

	var buf bytes.Buffer
	if err := service.WriteReport(&buf, summaries); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="summary_report.csv"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"constituency-service/internal/service"
)

func (h *Handler) getReport(c *gin.Context) {
	filter := service.ReportFilter{
		Type:      strings.ToLower(strings.TrimSpace(c.Query("type"))),
		StartDate: strings.TrimSpace(c.Query("startDate")),
		EndDate:   strings.TrimSpace(c.Query("endDate")),
		Village:   optionalQuery(c, "village"),
		District:  optionalQuery(c, "district"),
		Category:  optionalQuery(c, "category"),
	}

	report, err := h.reportService.Generate(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	switch format {
	case "", "json":
		c.JSON(http.StatusOK, successResponse(report))
	case "csv":
		h.writeCSV(c, report)
	case "xlsx":
		h.writeXLSX(c, report)
	default:
		c.JSON(http.StatusBadRequest, errorResponse("unknown format"))
	}
}

func (h *Handler) writeCSV(c *gin.Context, report *service.Report) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(report.Headers); err != nil {
		h.handleError(c, err)
		return
	}
	if err := w.WriteAll(report.Rows); err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-report-%s.csv", report.Type, report.EndDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) writeXLSX(c *gin.Context, report *service.Report) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &report.Headers); err != nil {
		h.handleError(c, err)
		return
	}
	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			h.handleError(c, err)
			return
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			h.handleError(c, err)
			return
		}
	}

	filename := fmt.Sprintf("%s-report-%s.xlsx", report.Type, report.EndDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("failed to stream xlsx report")
	}
}

func (h *Handler) getDashboard(c *gin.Context) {
	stats, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}

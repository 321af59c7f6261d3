package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/weighsoft/weighbridge/internal/errors"
	"github.com/weighsoft/weighbridge/internal/metrics"
	"github.com/weighsoft/weighbridge/internal/printer"
)

type printRequest struct {
	PrintData printer.Ticket `json:"printData"`
}

type printResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handlePrint(c echo.Context) error {
	var req printRequest
	if err := c.Bind(&req); err != nil {
		appErr := apperrors.Validation("invalid print request body", err)
		slog.Warn("Rejecting print request", "error", appErr)
		return c.JSON(appErr.HTTPStatus(), printResponse{Success: false, Message: appErr.Message})
	}

	start := time.Now()
	if err := s.printer.Print(c.Request().Context(), req.PrintData); err != nil {
		appErr := apperrors.Internal("failed to print ticket", err)
		metrics.PrintJobsTotal.WithLabelValues("error").Inc()
		slog.Error("Print job failed", "ticket_number", req.PrintData.TicketNumber, "error", err)
		return c.JSON(appErr.HTTPStatus(), printResponse{Success: false, Message: appErr.Message})
	}

	metrics.PrintJobsTotal.WithLabelValues("ok").Inc()
	metrics.PrintDuration.Observe(time.Since(start).Seconds())
	slog.Info("Print job completed", "ticket_number", req.PrintData.TicketNumber)

	return c.JSON(http.StatusOK, printResponse{Success: true, Message: "ticket printed"})
}

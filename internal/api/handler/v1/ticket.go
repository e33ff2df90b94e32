package v1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/service"
)

type TicketService interface {
	Issue(ctx context.Context, in service.IssueInput) (domain.PrintableTicket, error)
	Scan(ctx context.Context, in service.ScanInput) (domain.ScanResult, error)
	GetPrintable(ctx context.Context, id string) (domain.PrintableTicket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	Stats(ctx context.Context) (domain.Stats, error)
	Export(ctx context.Context, w io.Writer) error
}

type TicketHandler struct {
	svc TicketService
	now func() time.Time
}

func NewTicketHandler(svc TicketService) *TicketHandler {
	return &TicketHandler{
		svc: svc,
		now: time.Now,
	}
}

// HandleCreateTicket godoc
// @Summary      Issue a ticket
// @Description  Creates a ticket and returns it with its QR code. The QR code is the only place the ticket key is ever shown.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTicketRequest  true  "ticket holder"
// @Success      201      {object}  response.CreateTicket
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tickets/create [post]
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	var req request.CreateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	issued, err := h.svc.Issue(ctx.Request.Context(), service.IssueInput{
		Name:     req.Name,
		Category: req.Category,
		Seat:     req.Seat,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateTicket -> h.svc.Issue -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.CreateTicket{
		Success: true,
		Ticket:  response.NewPrintableTicket(issued),
	})
}

// HandleScanTicket godoc
// @Summary      Scan a ticket
// @Description  Verifies a ticket at the door and marks it used. Refusals are normal results with valid=false.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request  body      request.ScanTicketRequest  true  "scanned credentials"
// @Success      200      {object}  response.ScanResult
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tickets/scan [post]
func (h *TicketHandler) HandleScanTicket(ctx *gin.Context) {
	var req request.ScanTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Scan(ctx.Request.Context(), service.ScanInput{
		TicketID:  req.TicketID,
		Key:       req.Key,
		ScannedBy: req.ScannedBy,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleScanTicket -> h.svc.Scan -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewScanResult(result))
}

// HandleGetTicket godoc
// @Summary      Get a ticket for reprinting
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      string  true  "ticket id"
// @Success      200       {object}  response.GetTicket
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID} [get]
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	ticketID := ctx.Param("ticketID")

	printable, err := h.svc.GetPrintable(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "id", ticketID))
			return
		}

		err = fmt.Errorf("v1.HandleGetTicket -> h.svc.GetPrintable -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.GetTicket{Ticket: response.NewPrintableTicket(printable)})
}

// HandleListTickets godoc
// @Summary      List tickets
// @Description  Lists every ticket in creation order, without QR codes.
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  response.ListTickets
// @Failure      500  {object}  response.Err
// @Router       /tickets [get]
func (h *TicketHandler) HandleListTickets(ctx *gin.Context) {
	tickets, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListTickets -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ListTickets{Tickets: response.NewTickets(tickets)})
}

// HandleGetStats godoc
// @Summary      Attendance statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  response.GetStats
// @Failure      500  {object}  response.Err
// @Router       /stats [get]
func (h *TicketHandler) HandleGetStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.GetStats{Stats: stats})
}

// HandleExportCSV godoc
// @Summary      Export tickets as CSV
// @Tags         export
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      500  {object}  response.Err
// @Router       /export/csv [get]
func (h *TicketHandler) HandleExportCSV(ctx *gin.Context) {
	// Buffer the whole file so a store failure can still be a JSON error.
	var buf bytes.Buffer
	if err := h.svc.Export(ctx.Request.Context(), &buf); err != nil {
		err = fmt.Errorf("v1.HandleExportCSV -> h.svc.Export -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	filename := fmt.Sprintf("tickets-%d.csv", h.now().UnixMilli())
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

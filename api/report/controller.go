// Package report - inspection and repair report API controller.
package report

import (
	"net/http"

	"maintdesk/api/ctxutil"
	"maintdesk/api/response"
	reportapp "maintdesk/application/report"
	"maintdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller Report controller
type Controller struct {
	reportService *reportapp.ApplicationService
}

// NewController Create report controller
func NewController(reportService *reportapp.ApplicationService) *Controller {
	return &Controller{
		reportService: reportService,
	}
}

// RegisterRoutes Register report routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	appointmentGroup := router.Group("/appointments")
	{
		appointmentGroup.POST("/:id/inspection-report", c.SubmitInspection)
		appointmentGroup.POST("/:id/repair-report", c.SubmitRepair)
	}
	reportGroup := router.Group("/reports")
	{
		reportGroup.GET("/:id", c.GetReport)
		reportGroup.POST("/:id/approvals", c.RecordApproval)
		reportGroup.POST("/:id/rework", c.ReworkReport)
	}
	router.GET("/requests/:id/reports", c.GetRequestReports)
}

// SubmitInspection File the inspection report for a visit
// POST /api/v1/appointments/:id/inspection-report
func (c *Controller) SubmitInspection(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd reportapp.SubmitInspectionCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := c.reportService.SubmitInspection(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, resp, "inspection report submitted successfully")
}

// SubmitRepair File the repair report for a visit
// POST /api/v1/appointments/:id/repair-report
func (c *Controller) SubmitRepair(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd reportapp.SubmitRepairCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := c.reportService.SubmitRepair(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, resp, "repair report submitted successfully")
}

// GetReport Get one report with its approval audit trail
// GET /api/v1/reports/:id
func (c *Controller) GetReport(ctx *gin.Context) {
	reportID := ctx.Param("id")
	if reportID == "" {
		response.HandleError(ctx, errors.BadRequest("report ID is required"), "report ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.reportService.GetReport(ctxutil.WithRequestID(ctx), reportID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "report retrieved successfully")
}

// RecordApproval Record one approval chain decision
// POST /api/v1/reports/:id/approvals
func (c *Controller) RecordApproval(ctx *gin.Context) {
	reportID := ctx.Param("id")
	if reportID == "" {
		response.HandleError(ctx, errors.BadRequest("report ID is required"), "report ID is required", http.StatusBadRequest)
		return
	}

	var cmd reportapp.RecordApprovalCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.ReportID = reportID

	resp, err := c.reportService.RecordApproval(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "approval recorded successfully")
}

// ReworkReport Resubmit a rejected report
// POST /api/v1/reports/:id/rework
func (c *Controller) ReworkReport(ctx *gin.Context) {
	reportID := ctx.Param("id")
	if reportID == "" {
		response.HandleError(ctx, errors.BadRequest("report ID is required"), "report ID is required", http.StatusBadRequest)
		return
	}

	var cmd reportapp.ReworkCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.ReportID = reportID

	resp, err := c.reportService.ReworkReport(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "report reworked successfully")
}

// GetRequestReports List all reports filed for a request
// GET /api/v1/requests/:id/reports
func (c *Controller) GetRequestReports(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.reportService.GetRequestReports(ctxutil.WithRequestID(ctx), requestID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "reports retrieved successfully")
}

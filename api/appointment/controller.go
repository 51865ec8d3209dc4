// Package appointment - appointment and work order API controller.
package appointment

import (
	"context"
	"net/http"

	"maintdesk/api/ctxutil"
	"maintdesk/api/response"
	appointmentapp "maintdesk/application/appointment"
	"maintdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller Appointment controller
type Controller struct {
	appointmentService *appointmentapp.ApplicationService
}

// NewController Create appointment controller
func NewController(appointmentService *appointmentapp.ApplicationService) *Controller {
	return &Controller{
		appointmentService: appointmentService,
	}
}

// RegisterRoutes Register appointment routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	appointmentGroup := router.Group("/appointments")
	{
		appointmentGroup.GET("/:id", c.GetAppointment)
		appointmentGroup.GET("/request/:requestId", c.GetOpenAppointmentForRequest)
		appointmentGroup.POST("/:id/recommendations", c.RecommendTechnicians)
		appointmentGroup.POST("/:id/technicians", c.AssignTechnicians)
		appointmentGroup.POST("/:id/phase", c.AdvancePhase)
		appointmentGroup.POST("/:id/cancel", c.CancelAppointment)
		appointmentGroup.POST("/:id/work-orders/start", c.StartWork)
		appointmentGroup.POST("/:id/work-orders/complete", c.CompleteWork)
	}
}

// GetAppointment Get one appointment with its work orders
// GET /api/v1/appointments/:id
func (c *Controller) GetAppointment(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.appointmentService.GetAppointment(ctxutil.WithRequestID(ctx), appointmentID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "appointment retrieved successfully")
}

// GetOpenAppointmentForRequest Get the open appointment for a request
// GET /api/v1/appointments/request/:requestId
func (c *Controller) GetOpenAppointmentForRequest(ctx *gin.Context) {
	requestID := ctx.Param("requestId")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.appointmentService.GetOpenAppointmentForRequest(ctxutil.WithRequestID(ctx), requestID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "appointment retrieved successfully")
}

// RecommendTechnicians Rank candidate technicians for an appointment
// POST /api/v1/appointments/:id/recommendations
func (c *Controller) RecommendTechnicians(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd appointmentapp.RecommendCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := c.appointmentService.RecommendTechnicians(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "recommendations computed successfully")
}

// AssignTechnicians Assign technicians and open their work orders
// POST /api/v1/appointments/:id/technicians
func (c *Controller) AssignTechnicians(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd appointmentapp.AssignTechniciansCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := c.appointmentService.AssignTechnicians(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "technicians assigned successfully")
}

// AdvancePhase Advance the appointment through its visit phases
// POST /api/v1/appointments/:id/phase
func (c *Controller) AdvancePhase(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd appointmentapp.AdvancePhaseCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := c.appointmentService.AdvancePhase(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "appointment advanced successfully")
}

// CancelAppointment Cancel an appointment and its work orders
// POST /api/v1/appointments/:id/cancel
func (c *Controller) CancelAppointment(ctx *gin.Context) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd appointmentapp.CancelAppointmentCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := c.appointmentService.CancelAppointment(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "appointment cancelled successfully")
}

// StartWork One technician starts their work order
// POST /api/v1/appointments/:id/work-orders/start
func (c *Controller) StartWork(ctx *gin.Context) {
	c.updateWorkOrder(ctx, c.appointmentService.StartWork, "work order started successfully")
}

// CompleteWork One technician completes their work order
// POST /api/v1/appointments/:id/work-orders/complete
func (c *Controller) CompleteWork(ctx *gin.Context) {
	c.updateWorkOrder(ctx, c.appointmentService.CompleteWork, "work order completed successfully")
}

func (c *Controller) updateWorkOrder(
	ctx *gin.Context,
	op func(context.Context, appointmentapp.WorkOrderCommand) (*appointmentapp.AppointmentResponse, error),
	message string,
) {
	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		response.HandleError(ctx, errors.BadRequest("appointment ID is required"), "appointment ID is required", http.StatusBadRequest)
		return
	}

	var cmd appointmentapp.WorkOrderCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AppointmentID = appointmentID

	resp, err := op(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, message)
}

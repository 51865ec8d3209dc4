/*
Package request - repair request API controller.

Responsibilities:
1. Receive HTTP requests and parse parameters
2. Call the application service for the business logic
3. Use the response package for uniform responses and errors

Error handling:
1. Binding errors: response.HandleError returns 400 directly
2. Business errors: response.HandleAppError maps the status code
*/
package request

import (
	"net/http"

	"maintdesk/api/ctxutil"
	"maintdesk/api/response"
	requestapp "maintdesk/application/request"
	"maintdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller Repair request controller
type Controller struct {
	requestService *requestapp.ApplicationService
}

// NewController Create repair request controller
func NewController(requestService *requestapp.ApplicationService) *Controller {
	return &Controller{
		requestService: requestService,
	}
}

// RegisterRoutes Register repair request routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	requestGroup := router.Group("/requests")
	{
		requestGroup.POST("", c.SubmitRequest)
		requestGroup.GET("/:id", c.GetRequest)
		requestGroup.GET("/requester/:requesterId", c.GetRequesterRequests)
		requestGroup.POST("/:id/triage", c.TriageRequest)
		requestGroup.POST("/:id/escalate", c.EscalateRequest)
		requestGroup.POST("/:id/cancel", c.CancelRequest)
		requestGroup.POST("/:id/acceptance", c.VerifyAcceptance)
		requestGroup.POST("/:id/feedback", c.AddFeedback)
		requestGroup.GET("/:id/feedback", c.ListFeedback)
	}
}

// SubmitRequest Submit a repair request
// POST /api/v1/requests
func (c *Controller) SubmitRequest(ctx *gin.Context) {
	var cmd requestapp.SubmitRequestCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	resp, err := c.requestService.SubmitRequest(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, resp, "request submitted successfully")
}

// GetRequest Get one repair request with its tracking history
// GET /api/v1/requests/:id
func (c *Controller) GetRequest(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.requestService.GetRequest(ctxutil.WithRequestID(ctx), requestID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "request retrieved successfully")
}

// GetRequesterRequests List all requests filed by one requester
// GET /api/v1/requests/requester/:requesterId
func (c *Controller) GetRequesterRequests(ctx *gin.Context) {
	requesterID := ctx.Param("requesterId")
	if requesterID == "" {
		response.HandleError(ctx, errors.BadRequest("requester ID is required"), "requester ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.requestService.GetRequesterRequests(ctxutil.WithRequestID(ctx), requesterID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "requests retrieved successfully")
}

// TriageRequest Record a triage decision
// POST /api/v1/requests/:id/triage
func (c *Controller) TriageRequest(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	var cmd requestapp.TriageCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.RequestID = requestID

	resp, err := c.requestService.TriageRequest(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "triage recorded successfully")
}

// EscalateRequest Escalate a request to the manager
// POST /api/v1/requests/:id/escalate
func (c *Controller) EscalateRequest(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	var cmd requestapp.EscalateCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.RequestID = requestID

	resp, err := c.requestService.EscalateRequest(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "request escalated successfully")
}

// CancelRequest Cancel a request and its open appointment
// POST /api/v1/requests/:id/cancel
func (c *Controller) CancelRequest(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	var cmd requestapp.CancelCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.RequestID = requestID

	resp, err := c.requestService.CancelRequest(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "request cancelled successfully")
}

// VerifyAcceptance Requester signs off the finished work
// POST /api/v1/requests/:id/acceptance
func (c *Controller) VerifyAcceptance(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	var cmd requestapp.VerifyAcceptanceCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.RequestID = requestID

	resp, err := c.requestService.VerifyAcceptance(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "acceptance verified successfully")
}

// AddFeedback Record feedback on a completed request
// POST /api/v1/requests/:id/feedback
func (c *Controller) AddFeedback(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	var cmd requestapp.AddFeedbackCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.RequestID = requestID

	resp, err := c.requestService.AddFeedback(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, resp, "feedback recorded successfully")
}

// ListFeedback List feedback left on a request
// GET /api/v1/requests/:id/feedback
func (c *Controller) ListFeedback(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.requestService.ListFeedback(ctxutil.WithRequestID(ctx), requestID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "feedback retrieved successfully")
}

// Package billing - invoice and payment API controller.
package billing

import (
	"net/http"

	"maintdesk/api/ctxutil"
	"maintdesk/api/response"
	billingapp "maintdesk/application/billing"
	"maintdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller Billing controller
type Controller struct {
	billingService *billingapp.ApplicationService
}

// NewController Create billing controller
func NewController(billingService *billingapp.ApplicationService) *Controller {
	return &Controller{
		billingService: billingService,
	}
}

// RegisterRoutes Register billing routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	invoiceGroup := router.Group("/invoices")
	{
		invoiceGroup.GET("/:id", c.GetInvoice)
		invoiceGroup.GET("/:id/transactions", c.GetInvoiceTransactions)
		invoiceGroup.POST("/:id/accessory-lines", c.AddAccessoryLine)
		invoiceGroup.DELETE("/:id/accessory-lines/:lineId", c.RemoveAccessoryLine)
		invoiceGroup.POST("/:id/service-lines", c.AddServiceLine)
		invoiceGroup.DELETE("/:id/service-lines/:lineId", c.RemoveServiceLine)
		invoiceGroup.POST("/:id/finalize", c.FinalizeInvoice)
		invoiceGroup.POST("/:id/cancel", c.CancelInvoice)
	}
	router.POST("/transactions/:id/payment", c.RecordPayment)
	router.GET("/requests/:id/invoices", c.GetRequestInvoices)
}

// GetInvoice Get one invoice with its lines
// GET /api/v1/invoices/:id
func (c *Controller) GetInvoice(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	if invoiceID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID is required"), "invoice ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.billingService.GetInvoice(ctxutil.WithRequestID(ctx), invoiceID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "invoice retrieved successfully")
}

// GetInvoiceTransactions List payment legs opened for an invoice
// GET /api/v1/invoices/:id/transactions
func (c *Controller) GetInvoiceTransactions(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	if invoiceID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID is required"), "invoice ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.billingService.GetInvoiceTransactions(ctxutil.WithRequestID(ctx), invoiceID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "transactions retrieved successfully")
}

// AddAccessoryLine Add an accessory line to a draft invoice
// POST /api/v1/invoices/:id/accessory-lines
func (c *Controller) AddAccessoryLine(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	if invoiceID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID is required"), "invoice ID is required", http.StatusBadRequest)
		return
	}

	var cmd billingapp.AddAccessoryLineCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.InvoiceID = invoiceID

	resp, err := c.billingService.AddAccessoryLine(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "accessory line added successfully")
}

// RemoveAccessoryLine Remove an accessory line from a draft invoice
// DELETE /api/v1/invoices/:id/accessory-lines/:lineId
func (c *Controller) RemoveAccessoryLine(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	lineID := ctx.Param("lineId")
	if invoiceID == "" || lineID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID and line ID are required"), "invoice ID and line ID are required", http.StatusBadRequest)
		return
	}

	resp, err := c.billingService.RemoveAccessoryLine(ctxutil.WithRequestID(ctx), invoiceID, lineID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "accessory line removed successfully")
}

// AddServiceLine Add a service line to a draft invoice
// POST /api/v1/invoices/:id/service-lines
func (c *Controller) AddServiceLine(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	if invoiceID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID is required"), "invoice ID is required", http.StatusBadRequest)
		return
	}

	var cmd billingapp.AddServiceLineCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.InvoiceID = invoiceID

	resp, err := c.billingService.AddServiceLine(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "service line added successfully")
}

// RemoveServiceLine Remove a service line from a draft invoice
// DELETE /api/v1/invoices/:id/service-lines/:lineId
func (c *Controller) RemoveServiceLine(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	lineID := ctx.Param("lineId")
	if invoiceID == "" || lineID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID and line ID are required"), "invoice ID and line ID are required", http.StatusBadRequest)
		return
	}

	resp, err := c.billingService.RemoveServiceLine(ctxutil.WithRequestID(ctx), invoiceID, lineID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "service line removed successfully")
}

// FinalizeInvoice Settle a draft invoice: stock moves plus payment leg
// POST /api/v1/invoices/:id/finalize
func (c *Controller) FinalizeInvoice(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	if invoiceID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID is required"), "invoice ID is required", http.StatusBadRequest)
		return
	}

	var cmd billingapp.FinalizeCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.InvoiceID = invoiceID

	resp, err := c.billingService.FinalizeInvoice(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "invoice finalized successfully")
}

// CancelInvoiceRequest Cancel invoice request body
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelInvoice Cancel a draft invoice
// POST /api/v1/invoices/:id/cancel
func (c *Controller) CancelInvoice(ctx *gin.Context) {
	invoiceID := ctx.Param("id")
	if invoiceID == "" {
		response.HandleError(ctx, errors.BadRequest("invoice ID is required"), "invoice ID is required", http.StatusBadRequest)
		return
	}

	var req CancelInvoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	resp, err := c.billingService.CancelInvoice(ctxutil.WithRequestID(ctx), invoiceID, req.Reason)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "invoice cancelled successfully")
}

// RecordPayment Payment gateway callback for a pending transaction
// POST /api/v1/transactions/:id/payment
func (c *Controller) RecordPayment(ctx *gin.Context) {
	transactionID := ctx.Param("id")
	if transactionID == "" {
		response.HandleError(ctx, errors.BadRequest("transaction ID is required"), "transaction ID is required", http.StatusBadRequest)
		return
	}

	var cmd billingapp.RecordPaymentCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.TransactionID = transactionID

	resp, err := c.billingService.RecordPayment(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "payment recorded successfully")
}

// GetRequestInvoices List invoices raised under a request
// GET /api/v1/requests/:id/invoices
func (c *Controller) GetRequestInvoices(ctx *gin.Context) {
	requestID := ctx.Param("id")
	if requestID == "" {
		response.HandleError(ctx, errors.BadRequest("request ID is required"), "request ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.billingService.GetRequestInvoices(ctxutil.WithRequestID(ctx), requestID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "invoices retrieved successfully")
}

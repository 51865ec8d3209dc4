// Package stock - accessory catalogue and stock ledger API controller.
package stock

import (
	"net/http"

	"maintdesk/api/ctxutil"
	"maintdesk/api/response"
	stockapp "maintdesk/application/stock"
	"maintdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller Stock controller
type Controller struct {
	stockService *stockapp.ApplicationService
}

// NewController Create stock controller
func NewController(stockService *stockapp.ApplicationService) *Controller {
	return &Controller{
		stockService: stockService,
	}
}

// RegisterRoutes Register stock routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	accessoryGroup := router.Group("/accessories")
	{
		accessoryGroup.POST("", c.CreateAccessory)
		accessoryGroup.GET("", c.ListAccessories)
		accessoryGroup.GET("/:id", c.GetAccessory)
		accessoryGroup.PUT("/:id", c.UpdateAccessory)
		accessoryGroup.POST("/:id/adjustments", c.AdjustStock)
		accessoryGroup.GET("/:id/movements", c.GetMovements)
	}
}

// CreateAccessory Add an accessory to the catalogue
// POST /api/v1/accessories
func (c *Controller) CreateAccessory(ctx *gin.Context) {
	var cmd stockapp.CreateAccessoryCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	resp, err := c.stockService.CreateAccessory(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, resp, "accessory created successfully")
}

// ListAccessories List the accessory catalogue
// GET /api/v1/accessories
func (c *Controller) ListAccessories(ctx *gin.Context) {
	resp, err := c.stockService.ListAccessories(ctxutil.WithRequestID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "accessories retrieved successfully")
}

// GetAccessory Get one accessory
// GET /api/v1/accessories/:id
func (c *Controller) GetAccessory(ctx *gin.Context) {
	accessoryID := ctx.Param("id")
	if accessoryID == "" {
		response.HandleError(ctx, errors.BadRequest("accessory ID is required"), "accessory ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.stockService.GetAccessory(ctxutil.WithRequestID(ctx), accessoryID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "accessory retrieved successfully")
}

// UpdateAccessory Rename or reprice an accessory
// PUT /api/v1/accessories/:id
func (c *Controller) UpdateAccessory(ctx *gin.Context) {
	accessoryID := ctx.Param("id")
	if accessoryID == "" {
		response.HandleError(ctx, errors.BadRequest("accessory ID is required"), "accessory ID is required", http.StatusBadRequest)
		return
	}

	var cmd stockapp.UpdateAccessoryCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AccessoryID = accessoryID

	resp, err := c.stockService.UpdateAccessory(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "accessory updated successfully")
}

// AdjustStock Record a manual import or export movement
// POST /api/v1/accessories/:id/adjustments
func (c *Controller) AdjustStock(ctx *gin.Context) {
	accessoryID := ctx.Param("id")
	if accessoryID == "" {
		response.HandleError(ctx, errors.BadRequest("accessory ID is required"), "accessory ID is required", http.StatusBadRequest)
		return
	}

	var cmd stockapp.AdjustStockCommand
	if err := ctx.ShouldBindJSON(&cmd); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	cmd.AccessoryID = accessoryID

	resp, err := c.stockService.AdjustStock(ctxutil.WithRequestID(ctx), cmd)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "stock adjusted successfully")
}

// GetMovements List the movement ledger for an accessory
// GET /api/v1/accessories/:id/movements
func (c *Controller) GetMovements(ctx *gin.Context) {
	accessoryID := ctx.Param("id")
	if accessoryID == "" {
		response.HandleError(ctx, errors.BadRequest("accessory ID is required"), "accessory ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.stockService.GetMovements(ctxutil.WithRequestID(ctx), accessoryID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "movements retrieved successfully")
}

package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Reconciler
}

func NewOrderHandler(service port.Reconciler, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type refreshManyRequest struct {
	IDs []int64 `json:"ids"`
}

type refundRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func orderID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(ctx *gin.Context, obj any) error {
	err := ctx.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	id, ok := orderID(ctx)
	if !ok {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.GetOrder(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	settlements, err := oh.service.GetSettlements(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order, settlements))
}

func (oh *OrderHandler) RefreshOne(ctx *gin.Context) {
	id, ok := orderID(ctx)
	if !ok {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	result, err := oh.service.RefreshOne(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.respondSingle(ctx, result)
}

func (oh *OrderHandler) RefreshMany(ctx *gin.Context) {
	req := refreshManyRequest{}
	if err := bindOptionalJSON(ctx, &req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	for _, id := range req.IDs {
		if id <= 0 {
			oh.handleValidationError(ctx, domain.ErrBadRequest)
			return
		}
	}

	batch, err := oh.service.RefreshMany(ctx, req.IDs)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.logger.Info("bulk refresh",
		zap.String("operator", getAuthPayload(ctx).Operator),
		zap.Int("requested", len(req.IDs)),
		zap.Int("updated", batch.Updated),
		zap.Int("refunded", batch.Refunded),
		zap.Int("failed", batch.Failed))

	oh.handleSuccess(ctx, newSummary(batch))
}

func (oh *OrderHandler) ManualRefund(ctx *gin.Context) {
	id, ok := orderID(ctx)
	if !ok {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}
	req := refundRequest{}
	if err := bindOptionalJSON(ctx, &req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	result, err := oh.service.ManualRefund(ctx, id, req.Reason)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.logger.Info("manual refund",
		zap.String("operator", getAuthPayload(ctx).Operator),
		zap.Int64("order", id),
		zap.String("outcome", string(result.Outcome)),
		zap.Stringer("amount", result.RefundAmount))

	oh.respondSingle(ctx, result)
}

func (oh *OrderHandler) OverrideStatus(ctx *gin.Context) {
	id, ok := orderID(ctx)
	if !ok {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}
	req := statusRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result, err := oh.service.OverrideStatus(ctx, id, status)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.logger.Info("status override",
		zap.String("operator", getAuthPayload(ctx).Operator),
		zap.Int64("order", id),
		zap.String("status", string(status)))

	oh.respondSingle(ctx, result)
}

func (oh *OrderHandler) Refill(ctx *gin.Context) {
	id, ok := orderID(ctx)
	if !ok {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	refillID, err := oh.service.Refill(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, refillResponse{OrderID: id, RefillID: refillID}, http.StatusAccepted)
}

func (oh *OrderHandler) respondSingle(ctx *gin.Context, result *domain.ReconcileResult) {
	summary, err := singleSummary(result)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, summary)
}

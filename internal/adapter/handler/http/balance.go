package http

import (
	"strconv"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type BalanceHandler struct {
	Handler
	service port.Reconciler
}

func NewBalanceHandler(service port.Reconciler, logger *zap.Logger) (*BalanceHandler, error) {
	return &BalanceHandler{
		Handler: Handler{logger: logger},
		service: service,
	}, nil
}

type balanceResponse struct {
	UserID  int64           `json:"user_id"`
	Current decimal.Decimal `json:"current"`
}

func (bh *BalanceHandler) UserBalance(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		bh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	balance, err := bh.service.GetBalance(ctx, userID)
	if err != nil {
		bh.handleError(ctx, err)
		return
	}

	bh.handleSuccess(ctx, balanceResponse{UserID: balance.UserID, Current: balance.Current})
}

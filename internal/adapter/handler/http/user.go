package http

import (
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OperatorHandler struct {
	Handler
	tokenService port.TokenService
}

type loginRequest struct {
	Operator string `json:"operator" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func NewOperatorHandler(tokenService port.TokenService, logger *zap.Logger) (*OperatorHandler, error) {
	return &OperatorHandler{
		Handler:      *NewHandler(logger),
		tokenService: tokenService,
	}, nil
}

func (oh *OperatorHandler) Login(ctx *gin.Context) {
	req := loginRequest{}
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	token, err := oh.tokenService.Login(req.Operator, req.Secret)
	if err != nil {
		oh.logger.Warn("operator login failed", zap.String("operator", req.Operator))
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, loginResponse{Token: token})
}

package http

import (
	"net/http"
	"strings"

	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"
const operatorPayloadKey = "operator_payload"

func abortUnauthorized(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
}

func authCheck(tokenService port.TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			abortUnauthorized(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Fields(header)
		if len(words) != 2 {
			abortUnauthorized(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}
		if words[0] != authType {
			abortUnauthorized(ctx, domain.ErrInvalidAuthorizationType)
			return
		}
		payload, err := tokenService.VerifyToken(words[1])
		if err != nil {
			abortUnauthorized(ctx, domain.ErrInvalidToken)
			return
		}

		ctx.Set(operatorPayloadKey, payload)

		ctx.Next()
	}
}

func getAuthPayload(ctx *gin.Context) *port.TokenPayload {
	return ctx.MustGet(operatorPayloadKey).(*port.TokenPayload)
}

// requestLogger logs every admin action with the operator that issued it.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
		}
		if p, ok := ctx.Get(operatorPayloadKey); ok {
			fields = append(fields, zap.String("operator", p.(*port.TokenPayload).Operator))
		}
		logger.Info("request", fields...)
	}
}

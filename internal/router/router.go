package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blues/efs/internal/auth"
	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/handler"
	"github.com/blues/efs/internal/logic"
	"github.com/gin-gonic/gin"
)

// Deps 路由依赖集合
type Deps struct {
	AuthClient      *auth.Client
	ChainManager    *chain.Manager
	BalanceLogic    *logic.BalanceLogic
	TipSplitLogic   *logic.TipSplitLogic
	SubmissionLogic *logic.SubmissionLogic
}

func Setup(deps Deps) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查（含各链连接状态）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "edition-funding-service",
			"chains":  deps.ChainManager.GetHealthStatus(),
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 管理端路由，全部要求管理员令牌
		admin := v1.Group("/admin")
		admin.Use(adminAuthMiddleware(deps.AuthClient))
		{
			balanceHandler := handler.NewBalanceHandler(deps.BalanceLogic)
			admin.GET("/balances", balanceHandler.GetBalances)
			admin.GET("/balances/summary", balanceHandler.GetBalancesSummary)

			tipSplitHandler := handler.NewTipSplitHandler(deps.TipSplitLogic)
			campaigns := admin.Group("/campaigns")
			{
				campaigns.GET("/:id/tip-split", tipSplitHandler.GetTipSplit)
				campaigns.PUT("/:id/tip-split", tipSplitHandler.UpdateTipSplit)
			}

			verifyHandler := handler.NewVerifyHandler(deps.SubmissionLogic)
			admin.POST("/submissions/:id/verify", verifyHandler.VerifySubmission)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// 管理员鉴权中间件，令牌交由用户服务校验
func adminAuthMiddleware(client *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "missing authorization token",
			})
			return
		}

		identity, err := client.VerifyAdminToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "invalid token",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"success": false,
				"message": "auth service unavailable",
			})
			return
		}

		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin role required",
			})
			return
		}

		c.Set("userId", identity.UserId)
		c.Next()
	}
}

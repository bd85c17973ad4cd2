package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

const accountKey = "account"

// RequireAuth 必须登录中间件
// 从 Authorization: Bearer <token> 中取出 token，校验后将账号存入上下文
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := auth.VerifySession(bearerToken(c))
		if err != nil {
			abortWithError(c, err)
			return
		}

		account, err := auth.ResolveAccount(c.Request.Context(), accountID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// RequireAdmin 管理员权限中间件，需在 RequireAuth 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireAdmin(GetAccount(c)); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// GetAccount 从上下文获取当前账号（未登录返回 nil）
func GetAccount(c *gin.Context) *model.Account {
	if v, exists := c.Get(accountKey); exists {
		if account, ok := v.(*model.Account); ok {
			return account
		}
	}
	return nil
}

// bearerToken 从 Authorization Header 获取 token
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func abortWithError(c *gin.Context, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		utils.Error(c, se.Status, se.Message)
	} else {
		_ = c.Error(err)
		utils.InternalServerError(c, "")
	}
	c.Abort()
}

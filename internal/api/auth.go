package api

import "github.com/gin-gonic/gin"

// BasicAuth 只保护 /api 下的路由，/health 供探活使用
func BasicAuth(user, pass string) gin.HandlerFunc {
	auth := gin.BasicAuthForRealm(gin.Accounts{user: pass}, "NewsPulse")
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		auth(c)
	}
}

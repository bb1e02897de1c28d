package middleware

import "github.com/gin-gonic/gin"

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  false,
		"error":   code,
		"message": message,
	})
}

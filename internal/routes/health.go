package routes

import (
	"github.com/gin-gonic/gin"

	"daily-worklog/internal/utils"
)

func Health(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		msg := c.Query("ping")
		if msg == "" {
			msg = "pong"
		}

		c.JSON(200, gin.H{
			"message": msg,
			"version": utils.GetVersion(),
		})
	})
}

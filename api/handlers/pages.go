package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

func ProgressPage(c *gin.Context) {
	c.HTML(http.StatusOK, "progress.html", nil)
}

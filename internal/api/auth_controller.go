package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed assets/auth.html
var authPage []byte

// AuthPage 授权落地页
func AuthPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", authPage)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/ledger-bridge/internal/form"
)

// SearchController 搜索回调控制器
type SearchController struct {
	builder *form.Builder
}

// NewSearchController 创建搜索回调控制器
func NewSearchController(builder *form.Builder) *SearchController {
	return &SearchController{builder: builder}
}

// Typeahead 按输入过滤工作人员
func (c *SearchController) Typeahead(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.builder.Typeahead(ctx.Query("query")))
}

// Attach 返回固定的附件
func (c *SearchController) Attach(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.builder.Attachment(""))
}

package controller

import (
	"codeshin_backend/internal/service"
	"codeshin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	Service *service.MasteryService
}

func NewMasteryController(svc *service.MasteryService) *MasteryController {
	return &MasteryController{Service: svc}
}

// @Summary 主题掌握程度与学习路径
// @Tags 掌握程度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/mastery [get]
func (c *MasteryController) Overview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	overview, err := c.Service.Overview(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 初始化主题掌握程度
// @Tags 掌握程度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/mastery/init [post]
func (c *MasteryController) Init(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	created, err := c.Service.Init(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"created": created})
}

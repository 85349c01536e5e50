package controller

import (
	"codeshin_backend/internal/service"
	"codeshin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(svc *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: svc}
}

// @Summary 提交代码
// @Description 评测代码、更新主题掌握程度并返回新的推荐
// @Tags 提交
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubmitRequest true "提交内容"
// @Success 201 {object} util.Response
// @Router /api/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.Submit(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// @Summary 提交历史
// @Tags 提交
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/submissions [get]
func (c *SubmissionController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := util.QueryInt(ctx.DefaultQuery("limit", "20"), 20)
	rows, err := c.Service.History(ctx.Request.Context(), user.UserID, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": rows, "total": len(rows)})
}

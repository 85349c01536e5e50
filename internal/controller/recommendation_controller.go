package controller

import (
	"codeshin_backend/internal/service"
	"codeshin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	Service *service.RecommendationService
}

func NewRecommendationController(svc *service.RecommendationService) *RecommendationController {
	return &RecommendationController{Service: svc}
}

type GenerateRecommendationRequest struct {
	ProblemID uint `json:"problemId" binding:"required"`
}

// @Summary 获取当前推荐
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/recommendations [get]
func (c *RecommendationController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Get(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 以指定题目为当前题目重新生成推荐
// @Tags 推荐
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateRecommendationRequest true "当前题目"
// @Success 200 {object} util.Response
// @Router /api/recommendations [post]
func (c *RecommendationController) Generate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateRecommendationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	run, err := c.Service.Recommend(ctx.Request.Context(), user.UserID, req.ProblemID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, run)
}

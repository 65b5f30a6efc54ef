package diary

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	midsec "github.com/jjt256723/couple-space-app/middleware/security"
	diarymodel "github.com/jjt256723/couple-space-app/module/diary/model"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/tools/errs"
)

type createReq struct {
	Title   string  `json:"title" binding:"required,min=1,max=200"`
	Content string  `json:"content" binding:"required,min=1"`
	Mood    *string `json:"mood"`
}

type updateReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Mood    *string `json:"mood"`
}

func HandlerCreate(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	d, err := diarymodel.Create(c.Request.Context(), midsec.UserID(c), req.Title, req.Content, req.Mood)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, d)
}

func HandlerList(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx := c.Request.Context()
	u, err := usermodel.GetByID(ctx, midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}

	list, err := diarymodel.ListVisible(ctx, u.ID, u.CoupleID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	if list == nil {
		list = []*diarymodel.Diary{}
	}
	c.JSON(http.StatusOK, list)
}

func HandlerGet(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam)
		return
	}

	d, err := diarymodel.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, d)
}

func HandlerUpdate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam)
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	ctx := c.Request.Context()
	d, err := diarymodel.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	if d.UserID != midsec.UserID(c) {
		c.JSON(http.StatusForbidden, errs.ErrForbidden)
		return
	}

	updated, err := diarymodel.Update(ctx, id, req.Title, req.Content, req.Mood)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, updated)
}

func HandlerDelete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam)
		return
	}

	ctx := c.Request.Context()
	d, err := diarymodel.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	if d.UserID != midsec.UserID(c) {
		c.JSON(http.StatusForbidden, errs.ErrForbidden)
		return
	}

	if err := diarymodel.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

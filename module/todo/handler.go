package todo

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	midsec "github.com/jjt256723/couple-space-app/middleware/security"
	todomodel "github.com/jjt256723/couple-space-app/module/todo/model"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/tools/errs"
)

type createReq struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type updateReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	IsCompleted *bool      `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
}

func HandlerCreate(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	t, err := todomodel.Create(c.Request.Context(), midsec.UserID(c), req.Title, req.Description, req.DueDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, t)
}

func HandlerList(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	completedOnly := c.DefaultQuery("completed_only", "false") == "true"

	ctx := c.Request.Context()
	u, err := usermodel.GetByID(ctx, midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}

	list, err := todomodel.ListVisible(ctx, u.ID, u.CoupleID, skip, limit, completedOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	if list == nil {
		list = []*todomodel.Todo{}
	}
	c.JSON(http.StatusOK, list)
}

func HandlerGet(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam)
		return
	}

	t, err := todomodel.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, t)
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
	t, err := todomodel.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	if t.UserID != midsec.UserID(c) {
		c.JSON(http.StatusForbidden, errs.ErrForbidden)
		return
	}

	updated, err := todomodel.Update(ctx, id, req.Title, req.Description, req.IsCompleted, req.DueDate)
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
	t, err := todomodel.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	if t.UserID != midsec.UserID(c) {
		c.JSON(http.StatusForbidden, errs.ErrForbidden)
		return
	}

	if err := todomodel.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

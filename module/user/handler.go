package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	midsec "github.com/jjt256723/couple-space-app/middleware/security"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/module/user/service"
	"github.com/jjt256723/couple-space-app/tools/errs"
)

type registerReq struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname" binding:"required,min=1,max=50"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateReq struct {
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

func HandlerRegister(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	u, err := service.Register(c.Request.Context(), req.Username, req.Email, req.Nickname, req.Password)
	if err != nil {
		writeErr(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func HandlerLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	_, pair, err := service.Login(c.Request.Context(), req.Username, req.Password,
		c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		writeErr(c, err, http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func HandlerRefresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	pair, err := service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeErr(c, err, http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func HandlerMe(c *gin.Context) {
	u, err := usermodel.GetByID(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, u)
}

func HandlerUpdateMe(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	u, err := usermodel.UpdateProfile(c.Request.Context(), midsec.UserID(c), req.Nickname, req.AvatarURL, req.Bio)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, u)
}

// writeErr 业务错误带着自己的语义码返回；非 CodeError 统一当内部错误。
func writeErr(c *gin.Context, err error, status int) {
	if ce, ok := err.(errs.CodeError); ok {
		c.JSON(status, ce)
		return
	}
	c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
}

package couple

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	midsec "github.com/jjt256723/couple-space-app/middleware/security"
	couplemodel "github.com/jjt256723/couple-space-app/module/couple/model"
	"github.com/jjt256723/couple-space-app/module/couple/service"
	"github.com/jjt256723/couple-space-app/service/storage"
	"github.com/jjt256723/couple-space-app/tools/errs"
)

type bindReq struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

type anniversaryReq struct {
	AnniversaryDate time.Time `json:"anniversary_date" binding:"required"`
}

func HandlerCreate(c *gin.Context) {
	cp, err := service.Create(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func HandlerBind(c *gin.Context) {
	var req bindReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	cp, err := service.Bind(c.Request.Context(), midsec.UserID(c), req.InviteCode)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func HandlerGet(c *gin.Context) {
	cp, err := service.Get(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// HandlerAnniversary 设置纪念日。
func HandlerAnniversary(c *gin.Context) {
	var req anniversaryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	cp, err := service.Get(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	updated, err := couplemodel.UpdateAnniversary(c.Request.Context(), cp.ID, req.AnniversaryDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandlerPartner 返回伴侣信息，并附带 presence 镜像里的在线状态。
func HandlerPartner(c *gin.Context) {
	p, err := service.Partner(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()
	_, online, _ := storage.PresenceLookup(ctx, p.ID)

	c.JSON(http.StatusOK, gin.H{
		"partner":   p,
		"is_online": online,
	})
}

func writeErr(c *gin.Context, err error) {
	ce, ok := err.(errs.CodeError)
	if !ok {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	switch ce.Code {
	case errs.ErrUserNotFound.Code, errs.ErrNotPaired.Code,
		errs.ErrInviteInvalid.Code, errs.ErrPartnerMissing.Code:
		c.JSON(http.StatusNotFound, ce)
	default:
		c.JSON(http.StatusBadRequest, ce)
	}
}

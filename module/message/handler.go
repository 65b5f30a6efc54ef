package message

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	midsec "github.com/jjt256723/couple-space-app/middleware/security"
	couplemodel "github.com/jjt256723/couple-space-app/module/couple/model"
	msgmodel "github.com/jjt256723/couple-space-app/module/message/model"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/tools/errs"
)

type sendReq struct {
	Content     string `json:"content" binding:"required,min=1,max=5000"`
	MessageType string `json:"message_type"`
}

// HandlerSend REST 发消息：与实时通道共用同一追加语义，但不做在线广播。
func HandlerSend(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	ctx := c.Request.Context()
	senderID := midsec.UserID(c)

	sender, err := usermodel.GetByID(ctx, senderID)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}
	if sender.CoupleID == nil {
		c.JSON(http.StatusBadRequest, errs.ErrNotPaired)
		return
	}

	partner, err := usermodel.GetPartner(ctx, *sender.CoupleID, senderID)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrPartnerMissing)
		return
	}
	room, err := couplemodel.GetRoomForCouple(ctx, *sender.CoupleID)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrRoomNotFound)
		return
	}

	m, err := msgmodel.Append(ctx, senderID, partner.ID, room.ID, req.Content, req.MessageType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, m)
}

func HandlerList(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	ctx := c.Request.Context()
	userID := midsec.UserID(c)

	u, err := usermodel.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrUserNotFound)
		return
	}
	if u.CoupleID == nil {
		c.JSON(http.StatusOK, []*msgmodel.Message{})
		return
	}

	msgs, err := msgmodel.ListForUser(ctx, userID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	if msgs == nil {
		msgs = []*msgmodel.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func HandlerGet(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidParam)
		return
	}

	m, err := msgmodel.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, m)
}

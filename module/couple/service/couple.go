package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	couplemodel "github.com/jjt256723/couple-space-app/module/couple/model"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/tools/errs"
)

const defaultRoomName = "聊天室"

// NewInviteCode 生成 20 位十六进制邀请码。
func NewInviteCode() (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create 创建情侣关系：邀请码 + 房间 + 创建者绑定，一个事务完成。
func Create(ctx context.Context, userID int64) (*couplemodel.Couple, error) {
	u, err := usermodel.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.ErrUserNotFound
	}
	if u.CoupleID != nil {
		return nil, errs.ErrAlreadyPaired
	}

	code, err := NewInviteCode()
	if err != nil {
		return nil, err
	}

	cp, _, err := couplemodel.CreateWithRoom(ctx, userID, code, defaultRoomName)
	return cp, err
}

// Bind 用邀请码加入：先做容量检查（<2），再绑定。
func Bind(ctx context.Context, userID int64, inviteCode string) (*couplemodel.Couple, error) {
	u, err := usermodel.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.ErrUserNotFound
	}
	if u.CoupleID != nil {
		return nil, errs.ErrAlreadyPaired
	}

	cp, err := couplemodel.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, errs.ErrInviteInvalid
	}

	n, err := usermodel.CountCoupleMembers(ctx, cp.ID)
	if err != nil {
		return nil, err
	}
	if n >= 2 {
		return nil, errs.ErrCoupleFull
	}

	if err := usermodel.BindToCouple(ctx, userID, cp.ID); err != nil {
		return nil, err
	}
	return cp, nil
}

// Get 取当前用户的情侣关系。
func Get(ctx context.Context, userID int64) (*couplemodel.Couple, error) {
	u, err := usermodel.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.ErrUserNotFound
	}
	if u.CoupleID == nil {
		return nil, errs.ErrNotPaired
	}
	cp, err := couplemodel.GetByID(ctx, *u.CoupleID)
	if err != nil {
		return nil, errs.ErrNotPaired
	}
	return cp, nil
}

// Partner 取伴侣的用户记录。
func Partner(ctx context.Context, userID int64) (*usermodel.User, error) {
	u, err := usermodel.GetByID(ctx, userID)
	if err != nil {
		return nil, errs.ErrUserNotFound
	}
	if u.CoupleID == nil {
		return nil, errs.ErrNotPaired
	}
	p, err := usermodel.GetPartner(ctx, *u.CoupleID, userID)
	if err != nil {
		return nil, errs.ErrPartnerMissing
	}
	return p, nil
}

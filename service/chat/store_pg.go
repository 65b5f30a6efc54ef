package chat

import (
	"context"

	couplemodel "github.com/jjt256723/couple-space-app/module/couple/model"
	msgmodel "github.com/jjt256723/couple-space-app/module/message/model"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	userservice "github.com/jjt256723/couple-space-app/module/user/service"
)

// PgStore 生产实现：把 Store 映射到各业务 model。
type PgStore struct{}

func (PgStore) GetRoomForCouple(ctx context.Context, coupleID int64) (int64, error) {
	r, err := couplemodel.GetRoomForCouple(ctx, coupleID)
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}

func (PgStore) GetPartner(ctx context.Context, coupleID, excludingUserID int64) (*User, error) {
	u, err := usermodel.GetPartner(ctx, coupleID, excludingUserID)
	if err != nil {
		return nil, err
	}
	return toChatUser(u), nil
}

func (PgStore) AppendMessage(ctx context.Context, senderID, receiverID, roomID int64, content, messageType string) (*msgmodel.Message, error) {
	return msgmodel.Append(ctx, senderID, receiverID, roomID, content, messageType)
}

// JWTResolver 生产认证实现：access token -> 用户。
type JWTResolver struct{}

func (JWTResolver) Resolve(ctx context.Context, token string) (*User, error) {
	u, err := userservice.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return toChatUser(u), nil
}

func toChatUser(u *usermodel.User) *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Username: u.Username, CoupleID: u.CoupleID}
}

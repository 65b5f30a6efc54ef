package service

import (
	"context"
	"time"

	"github.com/jjt256723/couple-space-app/global"
	usermodel "github.com/jjt256723/couple-space-app/module/user/model"
	"github.com/jjt256723/couple-space-app/tools/errs"
	"github.com/jjt256723/couple-space-app/tools/ids"
	security "github.com/jjt256723/couple-space-app/tools/security"
)

// TokenPair 登录/刷新返回的令牌对。
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register 注册新用户。用户名与邮箱全局唯一。
func Register(ctx context.Context, username, email, nickname, password string) (*usermodel.User, error) {
	if _, err := usermodel.GetByUsername(ctx, username); err == nil {
		return nil, errs.ErrUserExists
	}
	if _, err := usermodel.GetByEmail(ctx, email); err == nil {
		return nil, errs.ErrEmailExists
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return usermodel.Create(ctx, username, email, nickname, hashed)
}

// Login 校验口令，签发令牌对，并旁路落一条会话记录。
func Login(ctx context.Context, username, password, ip, userAgent string) (*usermodel.User, *TokenPair, error) {
	u, err := usermodel.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, errs.ErrBadCredentials
	}
	ok, err := security.ComparePassword(password, u.HashedPassword)
	if err != nil || !ok {
		return nil, nil, errs.ErrBadCredentials
	}

	pair, hashes, err := issueTokens(u.ID)
	if err != nil {
		return nil, nil, err
	}

	// 会话记录尽力而为，失败只记日志语义（调用方不中断登录）
	_ = usermodel.SaveSessionReplacing(ctx, usermodel.UserSession{
		SessionID:        ids.GenerateString(),
		UserID:           u.ID,
		DeviceType:       "web",
		IP:               ip,
		UserAgent:        userAgent,
		AccessTokenHash:  hashes[0],
		RefreshTokenHash: hashes[1],
		IsValid:          true,
		Status:           "online",
		LoginTime:        time.Now(),
		ExpireAt:         time.Now().Add(time.Duration(global.Config().RefreshTokenDays) * 24 * time.Hour),
		CreateTime:       time.Now(),
		UpdateTime:       time.Now(),
	})

	return u, pair, nil
}

// Refresh 用 refresh token 换新令牌对。
func Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	opts := security.DefaultOptions(global.GetJwtSecret())
	uid, claims, err := security.Verify(opts, refreshToken)
	if err != nil {
		return nil, errs.ErrTokenExpired.WithDetail(err.Error())
	}
	if claims.Kind != "refresh" {
		return nil, errs.ErrUnauthorized
	}
	if _, err := usermodel.GetByID(ctx, uid); err != nil {
		return nil, errs.ErrUserNotFound
	}

	pair, _, err := issueTokens(uid)
	return pair, err
}

// ResolveToken 实时连接握手用：access token -> 用户记录。
func ResolveToken(ctx context.Context, token string) (*usermodel.User, error) {
	opts := security.DefaultOptions(global.GetJwtSecret())
	uid, claims, err := security.Verify(opts, token)
	if err != nil {
		return nil, err
	}
	if claims.Kind == "refresh" {
		return nil, errs.ErrUnauthorized
	}
	return usermodel.GetByID(ctx, uid)
}

func issueTokens(userID int64) (*TokenPair, [2]string, error) {
	cfg := global.Config()

	accessOpts := security.DefaultOptions(global.GetJwtSecret())
	accessOpts.TTL = time.Duration(cfg.AccessTokenMinutes) * time.Minute
	access, accessHash, _, err := security.Generate(accessOpts, userID, "")
	if err != nil {
		return nil, [2]string{}, err
	}

	refreshOpts := security.DefaultOptions(global.GetJwtSecret())
	refreshOpts.TTL = time.Duration(cfg.RefreshTokenDays) * 24 * time.Hour
	refresh, refreshHash, _, err := security.Generate(refreshOpts, userID, "refresh")
	if err != nil {
		return nil, [2]string{}, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, [2]string{accessHash, refreshHash}, nil
}

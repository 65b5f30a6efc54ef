package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jjt256723/couple-space-app/global"
	"github.com/jjt256723/couple-space-app/tools/errs"
	jwtlib "github.com/jjt256723/couple-space-app/tools/security"
)

// —— context key ——
// 后续模块统一用这俩 key 读取
const (
	CtxUserIDKey = "userID" // int64
	CtxTokenKey  = "authorization"
)

type Options struct {
	HeaderToken               string // 默认 "Authorization"
	EnableAuthorizationBearer bool   // 默认 true
}

func DefaultOptions() *Options {
	return &Options{
		HeaderToken:               "Authorization",
		EnableAuthorizationBearer: true,
	}
}

// Middleware 解析并校验 access token，把用户ID写入 gin context。
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		// 兼容 Authorization: Bearer xxx
		if opts.EnableAuthorizationBearer && strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[len("bearer "):])
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthorized)
			return
		}

		jwtOpts := jwtlib.DefaultOptions(global.GetJwtSecret())
		uid, claims, err := jwtlib.Verify(jwtOpts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenExpired.WithDetail(err.Error()))
			return
		}
		if claims.Kind == "refresh" {
			// refresh token 不能当 access token 用
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthorized)
			return
		}

		c.Set(CtxUserIDKey, uid)
		c.Set(CtxTokenKey, token)
		c.Next()
	}
}

// UserID 从 gin context 读取认证后的用户ID。
func UserID(c *gin.Context) int64 {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}

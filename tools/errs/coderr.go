package errs

import (
	"strconv"
	"strings"
)

// CodeError 是对外暴露的业务错误：code + msg（+ 可选 detail）
// detail 只放短诊断文本，不暴露内部堆栈。
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) CodeError {
	return CodeError{Code: code, Msg: msg}
}

func (e CodeError) WithDetail(detail string) CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// 业务错误码
var (
	ErrInvalidParam   = NewCodeError(1001, "参数错误")
	ErrUnauthorized   = NewCodeError(1002, "未认证或凭据无效")
	ErrTokenExpired   = NewCodeError(1003, "登录已过期")
	ErrUserNotFound   = NewCodeError(2001, "用户不存在")
	ErrUserExists     = NewCodeError(2002, "用户名已存在")
	ErrEmailExists    = NewCodeError(2003, "邮箱已被注册")
	ErrBadCredentials = NewCodeError(2004, "用户名或密码错误")
	ErrAlreadyPaired  = NewCodeError(3001, "用户已绑定情侣关系")
	ErrNotPaired      = NewCodeError(3002, "用户未绑定情侣关系")
	ErrInviteInvalid  = NewCodeError(3003, "邀请码无效")
	ErrCoupleFull     = NewCodeError(3004, "该情侣关系已满员")
	ErrPartnerMissing = NewCodeError(3005, "伴侣不存在")
	ErrRoomNotFound   = NewCodeError(3006, "聊天房间不存在")
	ErrNotFound       = NewCodeError(4004, "资源不存在")
	ErrForbidden      = NewCodeError(4003, "无权限操作")
	ErrInternal       = NewCodeError(5000, "服务内部错误")
)

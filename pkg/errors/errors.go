package errors

// 业务码与HTTP状态码保持一致，返回体中的code即响应的HTTP状态码

// 成功码
const (
	CodeSuccess = 200
	CodeCreated = 201
)

// 客户端与服务端错误码
const (
	CodeInvalidParam = 400 // 参数缺失或格式错误
	CodeUnauthorized = 401 // 令牌缺失、非法或已过期
	CodeForbidden    = 403 // 已认证但角色/权限不足，返回体附带required_roles或required_permissions
	CodeNotFound     = 404
	CodeServerError  = 500
)

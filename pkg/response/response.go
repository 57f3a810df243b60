package response

import (
	"net/http"

	"sinkrona/pkg/errors"
	"sinkrona/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ForbiddenResponse 403返回格式，携带所需角色或权限集合
// 前端根据required_roles/required_permissions做提示
type ForbiddenResponse struct {
	Code                int      `json:"code"`
	Message             string   `json:"message"`
	RequiredRoles       []string `json:"required_roles,omitempty"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Created 创建成功返回
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    errors.CodeCreated,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 通用错误返回，HTTP状态码与业务码一致
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

// ForbiddenWithRoles 403返回，附带允许访问的角色集合
func ForbiddenWithRoles(c *gin.Context, message string, roles []string) {
	c.JSON(http.StatusForbidden, ForbiddenResponse{
		Code:          errors.CodeForbidden,
		Message:       message,
		RequiredRoles: roles,
	})
}

// ForbiddenWithPermissions 403返回，附带所需权限集合
func ForbiddenWithPermissions(c *gin.Context, message string, permissions []string) {
	c.JSON(http.StatusForbidden, ForbiddenResponse{
		Code:                errors.CodeForbidden,
		Message:             message,
		RequiredPermissions: permissions,
	})
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}

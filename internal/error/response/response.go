package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navitadamayantisyarif/pbl311-sub000/internal/error/code"
)

// Response 定义统一的响应格式
type Response struct {
	Success    bool        `json:"success"`
	Code       string      `json:"code,omitempty"`
	Error      string      `json:"error,omitempty"`
	RetryAfter int         `json:"retry_after,omitempty"` // 秒，仅可重试错误携带
	Data       interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Fail 失败响应，消息取错误码的默认消息
func Fail(c *gin.Context, errorCode string) {
	FailWithMessage(c, errorCode, code.GetMessage(errorCode))
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode string, message string) {
	c.JSON(code.GetStatus(errorCode), Response{
		Success: false,
		Code:    errorCode,
		Error:   message,
	})
}

// FailWithRetry 可重试的失败响应，携带retry_after提示
func FailWithRetry(c *gin.Context, errorCode string, message string, retryAfter int) {
	c.JSON(code.GetStatus(errorCode), Response{
		Success:    false,
		Code:       errorCode,
		Error:      message,
		RetryAfter: retryAfter,
	})
}

// ParamError 参数错误响应
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.CodeBind, message)
}

// ServerError 服务器错误响应，不向客户端泄露内部细节
func ServerError(c *gin.Context) {
	Fail(c, code.CodeUnknown)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context) {
	Fail(c, code.CodeTokenInvalid)
}

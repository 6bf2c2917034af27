package code

import "net/http"

// 业务错误码。客户端依赖这些稳定的字符串进行分支处理，
// 不要修改已发布的取值。
const (
	// CodeSuccess - 成功.
	CodeSuccess = "SUCCESS"
	// CodeUnknown - 未知错误.
	CodeUnknown = "INTERNAL_ERROR"
	// CodeBind - 请求参数绑定错误.
	CodeBind = "INVALID_REQUEST"
	// CodeTokenInvalid - 令牌无效.
	CodeTokenInvalid = "UNAUTHORIZED"
	// CodeForbidden - 权限不足.
	CodeForbidden = "FORBIDDEN"
	// CodeTooManyRequests - 请求频率过高.
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// 门禁控制相关错误码.
const (
	// CodeInvalidAction - 无法识别的控制动作.
	CodeInvalidAction = "INVALID_ACTION"
	// CodeAccessDenied - 用户没有该门的授权.
	CodeAccessDenied = "ACCESS_DENIED"
	// CodeDoorNotFound - 门设备不存在.
	CodeDoorNotFound = "DOOR_NOT_FOUND"
	// CodeDoorOffline - 门设备离线（电量为0）.
	CodeDoorOffline = "DOOR_OFFLINE"
	// CodeLockTimeout - 获取门锁独占事务超时，可重试.
	CodeLockTimeout = "LOCK_TIMEOUT"
	// CodeHardwareError - 事务阶段持久化失败，已回滚，可重试.
	CodeHardwareError = "HARDWARE_ERROR"
)

// 用户相关错误码.
const (
	// CodeUserNotFound - 用户不存在.
	CodeUserNotFound = "USER_NOT_FOUND"
	// CodeUserAlreadyExist - 用户已存在.
	CodeUserAlreadyExist = "USER_ALREADY_EXISTS"
	// CodeLoginFailed - 邮箱或密码错误.
	CodeLoginFailed = "LOGIN_FAILED"
)

// 记录相关错误码.
const (
	// CodeRecordNotFound - 记录不存在.
	CodeRecordNotFound = "RECORD_NOT_FOUND"
	// CodeDatabase - 数据库错误.
	CodeDatabase = "DATABASE_ERROR"
)

// 错误码HTTP状态码映射
var codeStatusMap = map[string]int{
	CodeSuccess:         http.StatusOK,
	CodeUnknown:         http.StatusInternalServerError,
	CodeBind:            http.StatusBadRequest,
	CodeTokenInvalid:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeTooManyRequests: http.StatusTooManyRequests,

	CodeInvalidAction: http.StatusBadRequest,
	CodeAccessDenied:  http.StatusForbidden,
	CodeDoorNotFound:  http.StatusNotFound,
	CodeDoorOffline:   http.StatusBadRequest,
	CodeLockTimeout:   http.StatusServiceUnavailable,
	CodeHardwareError: http.StatusInternalServerError,

	CodeUserNotFound:     http.StatusNotFound,
	CodeUserAlreadyExist: http.StatusBadRequest,
	CodeLoginFailed:      http.StatusUnauthorized,

	CodeRecordNotFound: http.StatusNotFound,
	CodeDatabase:       http.StatusInternalServerError,
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code string) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

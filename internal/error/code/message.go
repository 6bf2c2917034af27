package code

// 错误码默认消息映射
var codeMessageMap = map[string]string{
	CodeSuccess:         "success",
	CodeUnknown:         "internal server error",
	CodeBind:            "invalid request parameters",
	CodeTokenInvalid:    "invalid or expired token",
	CodeForbidden:       "insufficient permissions",
	CodeTooManyRequests: "too many requests",

	CodeInvalidAction: "unrecognized door action",
	CodeAccessDenied:  "no access grant for this door",
	CodeDoorNotFound:  "door not found",
	CodeDoorOffline:   "door is offline",
	CodeLockTimeout:   "door is busy, please retry",
	CodeHardwareError: "hardware error, please retry",

	CodeUserNotFound:     "user not found",
	CodeUserAlreadyExist: "user already exists",
	CodeLoginFailed:      "invalid email or password",

	CodeRecordNotFound: "record not found",
	CodeDatabase:       "database error",
}

// GetMessage 获取错误码对应的默认消息
func GetMessage(code string) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

package response

// Resp is the single envelope every endpoint answers with.
type Resp struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK 成功响应
func OK(data any) Resp {
	return Resp{Success: true, Code: CodeOK, Data: data}
}

// Error 失败响应，customMsg 为空时用默认文案
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Success: false, Code: code, Error: msg}
}

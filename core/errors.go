package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - Code 区分错误大类（输入无效 / 服务不可用 / 不存在），Kind 区分具体规则
//   - 支持错误检查函数（IsXXX）与 errors.As / errors.Is
//
// 调用方按 Code 区分"修正输入后重试"（INVALID_INPUT）与"系统问题，稍后再试"（UNAVAILABLE）。
type DomainError struct {
	Code    string    // 错误代码（如 "INVALID_INPUT", "UNAVAILABLE"）
	Kind    ErrorKind // 错误种类（如 SameTeamError）
	Message string    // 错误消息
	Module  string    // 模块名称（如 "validate", "model"）
	Err     error     // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按 Module + Code + Kind 匹配，便于与哨兵错误比较。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code && e.Kind == t.Kind
}

// ErrorKind 是错误种类，对应具体的校验规则或失败原因。
type ErrorKind string

const (
	KindInvalidTeam       ErrorKind = "InvalidTeamError"
	KindSameTeam          ErrorKind = "SameTeamError"
	KindOversRange        ErrorKind = "OversRangeError"
	KindInvalidOverFormat ErrorKind = "InvalidOverFormatError"
	KindRunsRange         ErrorKind = "RunsRangeError"
	KindWicketsRange      ErrorKind = "WicketsRangeError"
	KindWindowConsistency ErrorKind = "WindowConsistencyError"
	KindRuleViolation     ErrorKind = "RuleViolationError"
	KindModelInference    ErrorKind = "ModelInferenceError"
)

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（沿错误链查找），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// NewInputError 创建输入校验错误（module=validate, code=INVALID_INPUT）
func NewInputError(kind ErrorKind, message string) *DomainError {
	return &DomainError{
		Module:  ModuleValidate,
		Code:    ErrorCodeInvalidInput,
		Kind:    kind,
		Message: message,
	}
}

// NewInferenceError 创建模型推理错误，包装底层原因
func NewInferenceError(message string, err error) *DomainError {
	return &DomainError{
		Module:  ModuleModel,
		Code:    ErrorCodeUnavailable,
		Kind:    KindModelInference,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 服务不可用
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleValidate = "validate" // 校验模块
	ModuleModel    = "model"    // 模型模块
)

// 哨兵错误，用于 errors.Is 比较种类
var (
	ErrInvalidTeam       = NewInputError(KindInvalidTeam, "invalid team")
	ErrSameTeam          = NewInputError(KindSameTeam, "batting and bowling teams must be different")
	ErrOversRange        = NewInputError(KindOversRange, "overs out of range")
	ErrInvalidOverFormat = NewInputError(KindInvalidOverFormat, "invalid over format")
	ErrRunsRange         = NewInputError(KindRunsRange, "runs out of range")
	ErrWicketsRange      = NewInputError(KindWicketsRange, "wickets out of range")
	ErrWindowConsistency = NewInputError(KindWindowConsistency, "last five overs window inconsistent")
	ErrRuleViolation     = NewInputError(KindRuleViolation, "guard rule violated")
	ErrModelInference    = NewInferenceError("model inference failed", nil)
)

// KindOf 返回错误种类，非 DomainError 返回空字符串
func KindOf(err error) ErrorKind {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Kind
	}
	return ""
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT（调用方修正输入即可）
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

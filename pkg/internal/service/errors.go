package service

import (
	"errors"
	"fmt"
)

// ValidationError 上传请求不满足约束，对应 400.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is 按 Code 匹配，便于 errors.Is(err, ErrFileTooLarge).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)

	return ok && t.Code == e.Code
}

var (
	// ErrNoFile 请求中没有文件.
	ErrNoFile = &ValidationError{Code: "no_file", Message: "No file uploaded"}
	// ErrUnsupportedType 声明的类型不在白名单中.
	ErrUnsupportedType = &ValidationError{Code: "unsupported_type", Message: "Unsupported file type"}
	// ErrFileTooLarge 文件超过大小上限.
	ErrFileTooLarge = &ValidationError{Code: "file_too_large", Message: "File too large. Maximum size is 50MB."}
	// ErrEmptyFile 文件为空.
	ErrEmptyFile = &ValidationError{Code: "empty_file", Message: "File is empty"}
	// ErrSignatureMismatch 文件内容与声明类型不符.
	ErrSignatureMismatch = &ValidationError{Code: "signature_mismatch", Message: "File content does not match declared type"}
)

// ErrNotFound 记录或文件不存在，对应 404.
var ErrNotFound = errors.New("file not found")

// IOError 磁盘或清单读写失败，对应 500.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// TooLarge 按实际上限（MiB）生成 file_too_large 错误.
func TooLarge(maxMB int64) *ValidationError {
	return &ValidationError{
		Code:    ErrFileTooLarge.Code,
		Message: fmt.Sprintf("File too large. Maximum size is %dMB.", maxMB),
	}
}

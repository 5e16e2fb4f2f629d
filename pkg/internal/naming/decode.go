package naming

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidName 请求的文件名无法安全解析.
var ErrInvalidName = errors.New("invalid file name")

// DecodeOnce 对 URL 中的原始转义路径片段做一次且仅一次百分号解码.
// "%252F" 得到字面量 "%2F"，不会再被当作 '/'.
func DecodeOnce(escaped string) (string, error) {
	escaped = strings.TrimPrefix(escaped, "/")
	if escaped == "" {
		return "", ErrInvalidName
	}

	name, err := url.PathUnescape(escaped)
	if err != nil {
		return "", ErrInvalidName
	}

	if strings.IndexByte(name, 0) >= 0 {
		return "", ErrInvalidName
	}

	return name, nil
}

// Escape 生成可放入 URL 路径的存储名.
func Escape(name string) string {
	return url.PathEscape(name)
}

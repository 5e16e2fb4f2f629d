// Package naming 负责把用户提交的原始文件名转换为磁盘安全、不易冲突的存储名.
//
// Sanitize 是纯函数且幂等；Generator 在清洗后的基础名上追加时间戳与随机数后缀，
// 并原样保留扩展名.
package naming

import "strings"

// transliterations 常见带重音的拉丁字母到 ASCII 的映射.
var transliterations = map[rune]string{
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'à': "a", 'â': "a", 'ä': "a", 'á': "a", 'ã': "a",
	'ù': "u", 'û': "u", 'ü': "u", 'ú': "u",
	'ì': "i", 'î': "i", 'ï': "i", 'í': "i",
	'ò': "o", 'ô': "o", 'ö': "o", 'ó': "o", 'õ': "o",
	'ñ': "n", 'ç': "c",
	'É': "E", 'È': "E", 'Ê': "E", 'Ë': "E",
	'À': "A", 'Â': "A", 'Ä': "A", 'Á': "A", 'Ã': "A",
	'Ù': "U", 'Û': "U", 'Ü': "U", 'Ú': "U",
	'Ì': "I", 'Î': "I", 'Ï': "I", 'Í': "I",
	'Ò': "O", 'Ô': "O", 'Ö': "O", 'Ó': "O", 'Õ': "O",
	'Ñ': "N", 'Ç': "C",
}

// mnemonics 标点符号到可读单词的映射.
var mnemonics = map[rune]string{
	'&': "and",
	'#': "hash",
	'%': "percent",
	'+': "plus",
	'=': "equals",
	'@': "at",
	'!': "exclamation",
	'$': "dollar",
	'^': "caret",
	'*': "asterisk",
}

// removed 直接删除的字符.
const removed = "()[]{}|\\/:;\"'<>,?~`"

// Sanitize 把任意字符串转换为只包含 [A-Za-z0-9._-] 的片段.
//
// 结果不含路径分隔符、不含 ".."，且首尾不是 '.' 或 '-'；空输入得到空串.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) string {
	var b strings.Builder

	b.Grow(len(raw))

	for _, r := range raw {
		if s, ok := transliterations[r]; ok {
			b.WriteString(s)

			continue
		}

		if r == ' ' {
			b.WriteByte('_')

			continue
		}

		if s, ok := mnemonics[r]; ok {
			b.WriteString(s)

			continue
		}

		if strings.ContainsRune(removed, r) {
			continue
		}

		if IsSafeByte(r) {
			b.WriteRune(r)
		}
	}

	return strings.Trim(collapseDots(b.String()), ".-")
}

// IsSafeByte 判断字符是否属于存储名允许的字符集.
func IsSafeByte(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	default:
		return false
	}
}

// IsSafe 判断 s 是否只由安全字符组成且不含 "..".
func IsSafe(s string) bool {
	if s == "" || strings.Contains(s, "..") {
		return false
	}

	for _, r := range s {
		if !IsSafeByte(r) {
			return false
		}
	}

	return true
}

// collapseDots 把连续的 '.' 合并为一个.
func collapseDots(s string) string {
	if !strings.Contains(s, "..") {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	prevDot := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' && prevDot {
			continue
		}

		prevDot = c == '.'

		b.WriteByte(c)
	}

	return b.String()
}

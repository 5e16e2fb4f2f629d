package naming

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	// suffixRandMax 随机后缀的上界（不含）.
	suffixRandMax = 1_000_000_000
	// MaxStoredNameLen 存储名的最大字节数，与常见文件系统的 NAME_MAX 一致.
	MaxStoredNameLen = 255
)

// Generator 生成存储名：<清洗后的基础名>-<毫秒时间戳>-<随机数><扩展名>.
type Generator struct {
	now  func() time.Time
	rand func(n int64) int64
}

// Option 配置 Generator.
type Option func(*Generator)

// WithClock 替换时间来源.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithRandom 替换随机数来源，fn 返回 [0, n) 内的整数.
func WithRandom(fn func(n int64) int64) Option {
	return func(g *Generator) {
		if fn != nil {
			g.rand = fn
		}
	}
}

// NewGenerator 创建存储名生成器.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.Int64N,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// StoredName 根据原始文件名生成存储名.
// 超过 MaxStoredNameLen 时截断基础名；扩展名本身过长时丢弃扩展名.
func (g *Generator) StoredName(originalName string) string {
	base, ext := SplitExt(originalName)
	base = Sanitize(base)

	suffix := "-" + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + strconv.FormatInt(g.rand(suffixRandMax), 10)

	if len(base)+len(suffix)+len(ext) > MaxStoredNameLen {
		budget := MaxStoredNameLen - len(suffix) - len(ext)
		if budget < 0 {
			ext = ""
			budget = MaxStoredNameLen - len(suffix)
		}

		// Sanitize 的结果只含 ASCII，按字节截断是安全的
		base = base[:min(budget, len(base))]
	}

	var b strings.Builder

	b.Grow(len(base) + len(suffix) + len(ext))
	b.WriteString(base)
	b.WriteString(suffix)
	b.WriteString(ext)

	return b.String()
}

// SplitExt 以最后一个 '.' 拆分基础名与扩展名（扩展名包含 '.'）.
// 含路径分隔符或 NUL 的扩展名被丢弃，此时整个名字作为基础名.
func SplitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}

	ext = name[i:]
	if strings.ContainsAny(ext, "/\\\x00") {
		return name, ""
	}

	return name[:i], ext
}

// Ext 返回存储名中的扩展名（小写），用于内容类型推断.
func Ext(name string) string {
	_, ext := SplitExt(name)

	return strings.ToLower(ext)
}

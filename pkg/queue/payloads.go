package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID，来自请求 span.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识上传目录中的一个文件.
type FileRef struct {
	ID           string `json:"id,omitempty"`
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int64  `json:"size"`
	Checksum     string `json:"checksum,omitempty"`
}

// FileStoredPayload 文件已落盘并写入清单.
type FileStoredPayload struct {
	File FileRef `json:"file"`
}

// FileDeletedPayload 清单记录已删除；FileRemoved 表示物理文件是否删除成功.
type FileDeletedPayload struct {
	File        FileRef `json:"file"`
	FileRemoved bool    `json:"file_removed"`
}

// FileOrphanedPayload 对账发现的孤儿文件.
type FileOrphanedPayload struct {
	File    FileRef   `json:"file"`
	ModTime time.Time `json:"mod_time"`
	Pruned  bool      `json:"pruned"`
}

// Package manifest 持久化上传文件的有序记录列表.
//
// Store 是清单的唯一写入方；实现自行串行化 读取-修改-写回 周期，
// json 后端使用互斥锁，db 后端使用事务.
package manifest

import (
	"context"
	"errors"

	"github.com/yeisme/docshelf/pkg/internal/model"
)

var (
	// ErrNotFound 清单中没有该 id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID id 已存在.
	ErrDuplicateID = errors.New("duplicate record id")
)

// Store 文件清单.
type Store interface {
	// Load 按插入顺序返回全部记录；清单不存在或无法解析时返回空列表.
	Load(ctx context.Context) ([]model.FileRecord, error)
	// Get 按 id 查找记录.
	Get(ctx context.Context, id string) (model.FileRecord, error)
	// Append 追加一条记录.
	Append(ctx context.Context, rec model.FileRecord) error
	// Remove 删除并返回记录.
	Remove(ctx context.Context, id string) (model.FileRecord, error)
	// Close 释放资源.
	Close() error
}

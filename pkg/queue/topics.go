// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：docshelf.<域>.<动作>，尽量稳定且向后兼容.

const (
	// TopicFileStored 文件写入上传目录并追加到清单之后发布.
	TopicFileStored = "docshelf.file.stored"
	// TopicFileDeleted 清单记录删除之后发布.
	TopicFileDeleted = "docshelf.file.deleted"
	// TopicFileOrphaned 对账发现上传目录中未被清单引用的文件时发布.
	TopicFileOrphaned = "docshelf.file.orphaned"
	// TopicPoison 处理器重试耗尽的消息.
	TopicPoison = "docshelf.poison"
)

// Topics 返回全部文件域主题.
func Topics() []string {
	return []string{TopicFileStored, TopicFileDeleted, TopicFileOrphaned}
}

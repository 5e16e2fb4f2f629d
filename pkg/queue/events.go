package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher 发布事件所需的最小接口，internal/storage/mq.Client 满足该接口.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// -------------------------- 文件域事件 --------------------------

// PublishFileStored 发布 docshelf.file.stored 事件.
func PublishFileStored(ctx context.Context, pub Publisher, payload FileStoredPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicFileStored, payload, opts...)
}

// PublishFileDeleted 发布 docshelf.file.deleted 事件.
func PublishFileDeleted(ctx context.Context, pub Publisher, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicFileDeleted, payload, opts...)
}

// PublishFileOrphaned 发布 docshelf.file.orphaned 事件.
func PublishFileOrphaned(ctx context.Context, pub Publisher, payload FileOrphanedPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicFileOrphaned, payload, opts...)
}

// ParseFileStored 将 Watermill 消息解析为 FileStoredPayload 信封.
func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](msg)
}

// ParseFileDeleted 将 Watermill 消息解析为 FileDeletedPayload 信封.
func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](msg)
}

// ParseFileOrphaned 将 Watermill 消息解析为 FileOrphanedPayload 信封.
func ParseFileOrphaned(msg *message.Message) (Message[FileOrphanedPayload], error) {
	return ParseWatermillMessage[FileOrphanedPayload](msg)
}

func publish[T any](ctx context.Context, pub Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, topic, msg)
}

package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	// MQTypeGoChannel 进程内 watermill gochannel，单实例部署使用.
	MQTypeGoChannel MQType = "gochannel"
	// MQTypeNATS NATS / JetStream.
	MQTypeNATS MQType = "nats"

	DefaultMQURL         = "nats://localhost:4222"
	DefaultMaxReconnects = 5               // 默认最大重连次数.
	DefaultReconnectWait = 5               // 默认重连等待时间（秒）.
	DefaultMQClientID    = "docshelf-app"  // 默认客户端ID
	DefaultChannelBuffer = 256             // gochannel 每个订阅者的缓冲大小
	DefaultDurablePrefix = "docshelf-sub"  // 默认 durable 前缀
	DefaultQueueGroup    = "docshelf-work" // 默认队列组
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type      MQType          `mapstructure:"type"      rule:"oneof=gochannel nats"`
	GoChannel GoChannelConfig `mapstructure:"gochannel"`
	NATS      MQNATSConfig    `mapstructure:"nats"`
}

// GoChannelConfig 进程内队列配置.
type GoChannelConfig struct {
	BufferSize int64 `mapstructure:"buffer_size" rule:"min=0"`
	Persistent bool  `mapstructure:"persistent"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	URL                    string `mapstructure:"url"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	ClientID               string `mapstructure:"client_id"`
	MaxReconnects          int    `mapstructure:"max_reconnects"           rule:"min=-1,max=100"`
	ReconnectWait          int    `mapstructure:"reconnect_wait"           rule:"min=1,max=300"`
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	DurablePrefix          string `mapstructure:"durable_prefix"`
	QueueGroup             string `mapstructure:"queue_group"`
	SubscribersCount       int    `mapstructure:"subscribers_count"        rule:"min=1,max=64"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// GetReconnectWait 返回重连等待时间.
func (c *MQNATSConfig) GetReconnectWait() time.Duration {
	return time.Duration(c.ReconnectWait) * time.Second
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeGoChannel)

	v.SetDefault("mq.gochannel.buffer_size", DefaultChannelBuffer)
	v.SetDefault("mq.gochannel.persistent", false)

	// NATS 默认值
	v.SetDefault("mq.nats.url", DefaultMQURL)
	v.SetDefault("mq.nats.user", "")
	v.SetDefault("mq.nats.password", "")
	v.SetDefault("mq.nats.client_id", DefaultMQClientID)
	v.SetDefault("mq.nats.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.nats.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.nats.jetstream_enabled", false)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.durable_prefix", DefaultDurablePrefix)
	v.SetDefault("mq.nats.queue_group", DefaultQueueGroup)
	v.SetDefault("mq.nats.subscribers_count", 1)
}

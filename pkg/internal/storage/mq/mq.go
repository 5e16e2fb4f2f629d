// Package mq 提供基于 Watermill 库的统一消息队列操作接口，
// 通过工厂模式抽象不同的 MQ 实现（进程内 gochannel、NATS/JetStream）.
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.MQ, mq.Options{})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.Publish(ctx, "docshelf.file.stored", msg)
//
//	client.AddHandler("mirror.stored", "docshelf.file.stored", func(msg *message.Message) error {
//		return nil
//	})
//	go client.Run(ctx)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/docshelf/pkg/configs"
	nlog "github.com/yeisme/docshelf/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Options 创建客户端的可选项.
type Options struct {
	// Registerer 非空时为 publisher、subscriber 和 router 装饰 watermill prometheus 指标
	Registerer prometheus.Registerer
	// HandlerRetries 处理失败时的重试次数
	HandlerRetries int
	// PoisonTopic 非空时，重试耗尽的消息转发到该主题并确认，避免无限重投
	PoisonTopic string
}

// Client 封装 watermill Publisher、Subscriber 与消费 Router.
type Client struct {
	Type configs.MQType

	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	logger     watermill.LoggerAdapter

	mu       sync.Mutex
	handlers int
	running  bool
}

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg configs.MQConfig, opts Options) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create router: %w", err), pub.Close(), sub.Close())
	}

	retries := opts.HandlerRetries
	if retries <= 0 {
		retries = 3
	}

	router.AddMiddleware(middleware.Recoverer)

	if opts.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(pub, opts.PoisonTopic)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("create poison queue: %w", err), pub.Close(), sub.Close())
		}

		router.AddMiddleware(poison)
	}

	router.AddMiddleware(
		middleware.Retry{
			MaxRetries:      retries,
			InitialInterval: 100 * time.Millisecond,
			Logger:          logger,
		}.Middleware,
	)

	if opts.Registerer != nil {
		metricsBuilder := metrics.NewPrometheusMetricsBuilder(opts.Registerer, configs.AppName, "mq")
		metricsBuilder.AddPrometheusRouterMetrics(router)

		if pub, err = metricsBuilder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = metricsBuilder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq client initialized")

	return &Client{
		Type:       cfg.Type,
		publisher:  pub,
		subscriber: sub,
		router:     router,
		logger:     logger,
	}, nil
}

// Publish 便捷发布.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	for _, m := range msgs {
		m.SetContext(ctx)
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 直接订阅主题，调用方负责 Ack/Nack.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// AddHandler 在 Router 上注册只消费不发布的处理器，需在 Run 之前调用.
func (c *Client) AddHandler(name, topic string, h message.NoPublishHandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.router.AddNoPublisherHandler(name, topic, c.subscriber, h)
	c.handlers++
}

// Run 运行 Router 直到 ctx 结束；没有注册处理器时直接等待 ctx.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.handlers == 0 || c.running {
		c.mu.Unlock()
		<-ctx.Done()

		return nil
	}

	c.running = true
	c.mu.Unlock()

	return c.router.Run(ctx)
}

// Running 返回 Router 已启动的通知通道.
func (c *Client) Running() chan struct{} {
	return c.router.Running()
}

// Close 关闭资源.
func (c *Client) Close() error {
	var errs []error

	if c.router != nil {
		errs = append(errs, c.router.Close())
	}

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}

//go:build !no_nats

package mq

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/docshelf/pkg/configs"
)

const defaultDrainTimeout = 30 * time.Second

// init 注册 NATS 工厂.
func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg configs.MQNATSConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientID),
		nc.MaxReconnects(cfg.MaxReconnects),
		nc.ReconnectWait(cfg.GetReconnectWait()),
		nc.DrainTimeout(defaultDrainTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.User != "" {
		opts = append(opts, nc.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置.
func buildJetStreamConfig(cfg configs.MQNATSConfig) nats.JetStreamConfig {
	return nats.JetStreamConfig{
		Disabled:      !cfg.JetStreamEnabled,
		AutoProvision: cfg.JetStreamAutoProvision,
		TrackMsgId:    cfg.JetStreamTrackMsgID,
		DurablePrefix: cfg.DurablePrefix,
	}
}

// natsFactory 创建 NATS Publisher & Subscriber.
func natsFactory(
	_ context.Context,
	cfg configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	natsCfg := cfg.NATS
	opts := buildNatsOptions(natsCfg)
	jsCfg := buildJetStreamConfig(natsCfg)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         natsCfg.URL,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              natsCfg.URL,
		QueueGroupPrefix: natsCfg.QueueGroup,
		SubscribersCount: natsCfg.SubscribersCount,
		NatsOptions:      opts,
		JetStream:        jsCfg,
		Unmarshaler:      marshaler,
	}, logger)
	if err != nil {
		_ = pub.Close()

		return nil, nil, err
	}

	logger.Info("nats pub/sub ready", watermill.LogFields{
		"url":       natsCfg.URL,
		"jetstream": natsCfg.JetStreamEnabled,
	})

	return pub, sub, nil
}

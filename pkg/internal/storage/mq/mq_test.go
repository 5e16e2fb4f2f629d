package mq_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yeisme/docshelf/pkg/configs"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/internal/storage/mq"
)

func newClient(t *testing.T, opts mq.Options) *mq.Client {
	t.Helper()
	nlog.Use(zerolog.Nop())

	cfg := configs.MQConfig{
		Type:      configs.MQTypeGoChannel,
		GoChannel: configs.GoChannelConfig{BufferSize: 16},
	}

	client, err := mq.New(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestPublishSubscribe 测试 gochannel 直接订阅收发.
func TestPublishSubscribe(t *testing.T) {
	client := newClient(t, mq.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := client.Subscribe(ctx, "test.topic")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"ok":true}`))
	if err := client.Publish(ctx, "test.topic", msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-ch:
		if string(got.Payload) != `{"ok":true}` {
			t.Errorf("payload = %s", got.Payload)
		}

		got.Ack()
	case <-ctx.Done():
		t.Fatal("timeout waiting for message")
	}
}

// TestRouterHandler 测试 Router 处理器与 prometheus 装饰.
func TestRouterHandler(t *testing.T) {
	client := newClient(t, mq.Options{Registerer: prometheus.NewRegistry()})

	received := make(chan string, 1)

	client.AddHandler("test.handler", "test.router", func(msg *message.Message) error {
		received <- string(msg.Payload)

		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() { _ = client.Run(ctx) }()

	select {
	case <-client.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	if err := client.Publish(ctx, "test.router", message.NewMessage(watermill.NewUUID(), []byte("hello"))); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got != "hello" {
			t.Errorf("payload = %q, want hello", got)
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for handler")
	}
}

// TestUnsupportedType 测试未知类型报错.
func TestUnsupportedType(t *testing.T) {
	if _, err := mq.New(context.Background(), configs.MQConfig{Type: "kafka"}, mq.Options{}); err == nil {
		t.Error("expected error for unsupported mq type")
	}

	types := mq.GetRegisteredMQTypes()
	if len(types) == 0 || types[0] != configs.MQTypeGoChannel {
		t.Errorf("registered types = %v", types)
	}
}

package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/linjuya-lu/device_gateway_go/internal/config"
)

// ClientOptions 配置 MQTT 客户端行为
// Broker: tcp://host:port
// ClientID: 客户端标识
// Username/Password: 可选认证，ThingsBoard 下 Username 为 access token
// KeepAlive: 心跳间隔
// ConnectTimeout: 连接超时
// RetryInterval: 自动重连间隔
// DefaultQos/DefaultRetain: 默认发布参数
type ClientOptions struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	RetryInterval  time.Duration
	DefaultQos     byte
	DefaultRetain  bool
}

// OptionsFromConfig 由配置文件里的 MQTT 段得到 ClientOptions
func OptionsFromConfig(cfg config.MQTTConfig) ClientOptions {
	return ClientOptions{
		Broker:         cfg.Broker,
		ClientID:       cfg.ClientID,
		Username:       cfg.Username,
		Password:       cfg.Password,
		KeepAlive:      time.Duration(cfg.KeepAliveSec) * time.Second,
		ConnectTimeout: time.Duration(cfg.ConnectTimeoutSec) * time.Second,
		RetryInterval:  time.Duration(cfg.RetryIntervalSec) * time.Second,
		DefaultQos:     cfg.Qos,
	}
}

// Client 封装 Paho MQTT 客户端：原始负载发布/订阅
type Client struct {
	inner paho.Client
	opts  ClientOptions
	mu    sync.Mutex
	subs  map[string]func(topic string, payload []byte)
}

// NewClient 创建一个新的 MQTT 客户端并连接到 Broker。
// 断线重连后自动恢复已有订阅。
func NewClient(opts ClientOptions) (*Client, error) {
	c := &Client{opts: opts, subs: make(map[string]func(string, []byte))}
	p := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetKeepAlive(opts.KeepAlive).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(c.resubscribe)
	if opts.RetryInterval > 0 {
		p.SetConnectRetryInterval(opts.RetryInterval)
	}
	if opts.Username != "" {
		p.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		p.SetPassword(opts.Password)
	}
	c.inner = paho.NewClient(p)
	if err := connect(c.inner, opts.ConnectTimeout); err != nil {
		return nil, err
	}
	return c, nil
}

// connect 超时后断开，停止 paho 的后台重连
func connect(inner paho.Client, timeout time.Duration) error {
	tok := inner.Connect()
	if !tok.WaitTimeout(timeout) {
		inner.Disconnect(0)
		return fmt.Errorf("mqtt connect timeout after %s", timeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Publish 以默认 QoS/Retain 发布原始负载
func (c *Client) Publish(topic string, payload []byte) error {
	tok := c.inner.Publish(topic, c.opts.DefaultQos, c.opts.DefaultRetain, payload)
	tok.Wait()
	return tok.Error()
}

// Subscribe 订阅主题，handler 接收实际主题与原始负载
func (c *Client) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()

	tok := c.inner.Subscribe(topic, c.opts.DefaultQos, func(_ paho.Client, m paho.Message) {
		handler(m.Topic(), m.Payload())
	})
	tok.Wait()
	return tok.Error()
}

func (c *Client) resubscribe(client paho.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, handler := range c.subs {
		h := handler
		client.Subscribe(topic, c.opts.DefaultQos, func(_ paho.Client, m paho.Message) {
			h(m.Topic(), m.Payload())
		})
	}
}

// Disconnect 断开与 Broker 的连接
func (c *Client) Disconnect(quiesce uint) {
	c.inner.Disconnect(quiesce)
}

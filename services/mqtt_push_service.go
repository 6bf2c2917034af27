package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// 主题常量
const (
	// 推送主题前缀，每个设备令牌一个主题
	TopicPushPrefix = "smartdoor/push/"

	// 系统消息主题
	TopicSystemMessage = "smartdoor/system"
)

// PushMessage 推送消息结构
type PushMessage struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}

// InterfacePushSender 推送投递边界。核心代码只依赖这个接口，
// 不关心实际的推送通道。
type InterfacePushSender interface {
	SendToTokens(title, body string, tokens []string) error
}

// InterfaceMQTTPushService 定义MQTT推送服务接口
type InterfaceMQTTPushService interface {
	InterfacePushSender
	Connect() error
	Disconnect()
	PublishSystemMessage(messageType string, payload map[string]interface{}) error
}

// MQTTPushService 通过MQTT主题向客户端设备投递推送
type MQTTPushService struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
	PublishMutex   sync.Mutex   // 用于保护MQTT消息发布
}

// NewMQTTPushService 创建新的MQTT推送服务
func NewMQTTPushService(cfg *config.Config) InterfaceMQTTPushService {
	return &MQTTPushService{
		Config: cfg,
	}
}

// 1 Connect 连接MQTT服务器
func (s *MQTTPushService) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.MQTTBroker).
		SetClientID(s.Config.MQTTClientID).
		SetUsername(s.Config.MQTTUsername).
		SetPassword(s.Config.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetKeepAlive(30 * time.Second)

	opts.OnConnect = func(client mqtt.Client) {
		s.setConnected(true)
		config.Info("MQTT推送服务已连接: %s", s.Config.MQTTBroker)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		s.setConnected(false)
		config.Warning("MQTT推送服务连接断开: %v", err)
	}

	s.Client = mqtt.NewClient(opts)
	token := s.Client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("MQTT连接超时")
	}
	if err := token.Error(); err != nil {
		return err
	}

	s.setConnected(true)
	return nil
}

// 2 Disconnect 断开MQTT连接
func (s *MQTTPushService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.setConnected(false)
}

// 3 SendToTokens 向一组设备令牌投递推送。
// 单个令牌失败不会中断其余投递，最后汇总返回失败的令牌。
func (s *MQTTPushService) SendToTokens(title, body string, tokens []string) error {
	if !s.connected() {
		return fmt.Errorf("MQTT推送服务未连接")
	}

	msg := PushMessage{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      body,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var failed []string
	for _, deviceToken := range tokens {
		if deviceToken == "" {
			continue
		}
		if err := s.publish(TopicPushPrefix+deviceToken, payload); err != nil {
			config.Warning("推送投递失败 token=%s: %v", deviceToken, err)
			failed = append(failed, deviceToken)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("推送投递失败的令牌: %s", strings.Join(failed, ","))
	}
	return nil
}

// 4 PublishSystemMessage 发布系统级消息
func (s *MQTTPushService) PublishSystemMessage(messageType string, payload map[string]interface{}) error {
	if !s.connected() {
		return fmt.Errorf("MQTT推送服务未连接")
	}

	message := map[string]interface{}{
		"type":      messageType,
		"timestamp": time.Now().UnixMilli(),
		"payload":   payload,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return s.publish(TopicSystemMessage, data)
}

func (s *MQTTPushService) publish(topic string, payload []byte) error {
	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	token := s.Client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("发布超时: %s", topic)
	}
	return token.Error()
}

func (s *MQTTPushService) connected() bool {
	s.connectedMutex.RLock()
	defer s.connectedMutex.RUnlock()
	return s.IsConnected
}

func (s *MQTTPushService) setConnected(v bool) {
	s.connectedMutex.Lock()
	defer s.connectedMutex.Unlock()
	s.IsConnected = v
}

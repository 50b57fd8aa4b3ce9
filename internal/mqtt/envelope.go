package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EdgexMessage 是 EdgeX MessageBus 的通用消息格式
type EdgexMessage struct {
	ApiVersion    string      `json:"apiVersion"`
	ReceivedTopic string      `json:"receivedTopic,omitempty"`
	CorrelationID string      `json:"correlationID"`
	RequestID     string      `json:"requestID"`
	ErrorCode     int         `json:"errorCode"`
	Payload       interface{} `json:"payload,omitempty"`
	ContentType   string      `json:"contentType"`
}

// ConversionEvent 一次连接器配置转换的记录
type ConversionEvent struct {
	Gateway     string `json:"gateway"`
	Connector   string `json:"connector"`
	Type        string `json:"type"`
	Direction   string `json:"direction"`
	FromVersion string `json:"fromVersion"`
	ToVersion   string `json:"toVersion"`
	Timestamp   int64  `json:"timestamp"` // Unix 纳秒
}

// NewEnvelope 用新的 correlationID/requestID 包装 payload
func NewEnvelope(payload interface{}) EdgexMessage {
	return EdgexMessage{
		ApiVersion:    "v3",
		CorrelationID: uuid.NewString(),
		RequestID:     uuid.NewString(),
		ErrorCode:     0,
		Payload:       payload,
		ContentType:   "application/json",
	}
}

// EncodeConversionEvent 组装一条 EdgeX 格式的转换事件
func EncodeConversionEvent(ev ConversionEvent) ([]byte, error) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixNano()
	}
	return json.Marshal(NewEnvelope(ev))
}

package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName 客户端通过 grpc.CallContentSubtype(codecName) 选择该编解码器
const codecName = "json"

// jsonCodec 以 JSON 编码消息，服务不依赖 protoc 生成代码
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

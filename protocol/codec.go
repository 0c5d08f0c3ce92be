package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrEmptyFrame = errors.New("protocol: empty frame")

// Codec 广播快照的编码方式
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// ParseCodec 空串视为 json
func ParseCodec(s string) (Codec, error) {
	switch Codec(s) {
	case "", CodecJSON:
		return CodecJSON, nil
	case CodecMsgpack:
		return CodecMsgpack, nil
	}
	return "", fmt.Errorf("protocol: unknown codec %q", s)
}

// Binary 该编码是否需要以二进制帧发送
func (c Codec) Binary() bool { return c == CodecMsgpack }

// DecodeClient 解析一帧入站消息
func DecodeClient(b []byte) (ClientMessage, error) {
	if len(b) == 0 {
		return ClientMessage{}, ErrEmptyFrame
	}
	var m ClientMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("protocol: decode frame: %w", err)
	}
	if m.Type == "" {
		return ClientMessage{}, fmt.Errorf("protocol: frame missing type")
	}
	return m, nil
}

// DataType 读取 game-data 的内层类型
func DataType(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("protocol: game-data without data")
	}
	var h DataHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return "", fmt.Errorf("protocol: decode data header: %w", err)
	}
	if h.Type == "" {
		return "", fmt.Errorf("protocol: data missing type")
	}
	return h.Type, nil
}

// DecodeData 将内层 data 解码为具体类型
func DecodeData[T any](data json.RawMessage) (T, error) {
	var out T
	err := json.Unmarshal(data, &out)
	return out, err
}

// Encode 事件类消息一律 JSON 文本
func Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("protocol: trying to encode nil message")
	}
	return json.Marshal(v)
}

// EncodeState 按房间编码方式编码快照
func EncodeState(c Codec, msg GameState) ([]byte, error) {
	if c == CodecMsgpack {
		return msgpack.Marshal(&msg)
	}
	return json.Marshal(msg)
}

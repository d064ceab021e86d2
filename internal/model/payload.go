package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// PayloadKind 载荷类型，写入时确定
type PayloadKind uint8

const (
	PayloadText PayloadKind = iota + 1
	PayloadStructured
)

// Payload 对话响应 / 海报数据：纯文本或结构化 JSON。
// 落库统一为 JSON 文本，纯文本存为 JSON 字符串字面量，读取时无歧义。
type Payload struct {
	Kind PayloadKind
	Text string
	Data json.RawMessage
}

// TextPayload 纯文本载荷
func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// StructuredPayload 将 v 编码为结构化载荷
func StructuredPayload(v any) (Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("encode payload: %w", err)
	}
	return Payload{Kind: PayloadStructured, Data: b}, nil
}

// IsZero 未设置
func (p Payload) IsZero() bool { return p.Kind == 0 }

// Decode 将结构化载荷解码到 v；纯文本载荷返回错误
func (p Payload) Decode(v any) error {
	if p.Kind != PayloadStructured {
		return errors.New("payload is not structured")
	}
	return json.Unmarshal(p.Data, v)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadText:
		return json.Marshal(p.Text)
	case PayloadStructured:
		if len(p.Data) == 0 {
			return []byte("null"), nil
		}
		return p.Data, nil
	default:
		return []byte("null"), nil
	}
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*p = Payload{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = TextPayload(s)
	default:
		if !json.Valid(b) {
			return errors.New("invalid payload json")
		}
		*p = Payload{Kind: PayloadStructured, Data: append(json.RawMessage(nil), b...)}
	}
	return nil
}

// Value 实现 driver.Valuer
func (p Payload) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner
func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case []byte:
		return p.UnmarshalJSON(v)
	case string:
		return p.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported payload source %T", src)
	}
}

// GormDBDataType postgres 用 jsonb，其余 text
func (Payload) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document はJSONBカラムに格納する不透明な構造化ペイロードを表す。
// measurement/statusはクライアント定義のキー構造を持つため、
// 中身を解釈せずに受け取ったバイト列のまま保存・返却する。
type Document json.RawMessage

// Value はdriver.Valuerを実装する。空のDocumentは空オブジェクトとして格納する。
func (d Document) Value() (driver.Value, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}
	if !json.Valid(d) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	return []byte(d), nil
}

// Scan はsql.Scannerを実装する。
func (d *Document) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Document("{}")
		return nil
	case []byte:
		*d = Document(append([]byte(nil), v...))
		return nil
	case string:
		*d = Document(v)
		return nil
	default:
		return fmt.Errorf("unsupported document source type %T", src)
	}
}

// MarshalJSON は格納済みのバイト列をそのまま返す。
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}
	return []byte(d), nil
}

// UnmarshalJSON は受け取ったバイト列をそのまま保持する。
func (d *Document) UnmarshalJSON(data []byte) error {
	if d == nil {
		return fmt.Errorf("cannot unmarshal into nil Document")
	}
	*d = Document(append([]byte(nil), data...))
	return nil
}

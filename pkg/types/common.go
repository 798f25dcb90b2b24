// pkg/types/common.go
package types

import "strconv"

// Hash 代表内容的唯一标识符 (SHA256 Hex String)
// 这是一个“值对象”，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool  { return h == "" }
func (h Hash) IsValid() bool { return len(h) == 64 } // 简单的长度检查

// ItemID 是商品的自增主键
type ItemID uint64

func (id ItemID) String() string { return strconv.FormatUint(uint64(id), 10) }

func (id ItemID) IsZero() bool { return id == 0 }

// ParseItemID 解析 URL / CLI 中的十进制 id
func ParseItemID(s string) (ItemID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ItemID(v), nil
}

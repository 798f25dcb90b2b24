package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"simplemercari/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 定义 Canonical CBOR 编码选项
var encOptions = cbor.EncOptions{
	// 1. 强制 Map Key 排序 (Canonical)
	// 保证相同的对象生成唯一的 Hash
	Sort: cbor.SortCanonical,

	// 2. 浮点数必须使用64位表示
	ShortestFloat: cbor.ShortestFloatNone,

	// 3. 时间格式化为 Unix 整数
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 4. 禁止不定长编码 (Indefinite Length)
	IndefLength: cbor.IndefLengthForbidden,
}

// 全局复用的编码模式
var em, _ = encOptions.EncMode()

// CalculateHash 计算任意值的 Canonical 指纹
// 用于 HTTP ETag：字段顺序、map 遍历顺序都不会影响结果
func CalculateHash(v any) (types.Hash, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal object: %w", err)
	}

	hashBytes := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(hashBytes[:])), nil
}

// CalculateBlobHash 计算原始数据块的 Hash
func CalculateBlobHash(data []byte) types.Hash {
	hashBytes := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(hashBytes[:]))
}

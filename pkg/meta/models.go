package meta

import "time"

// Category 商品分类
// Name 统一小写，唯一索引保证 find-or-create 不会产生重复行
type Category struct {
	ID   uint64 `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null"`
}

// TableName 强制指定表名
func (Category) TableName() string {
	return "category"
}

// Item 商品，创建后不可变
type Item struct {
	ID            uint64   `gorm:"primaryKey"`
	Name          string   `gorm:"type:varchar(255);not null"`
	CategoryID    uint64   `gorm:"not null;index"`
	Category      Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	ImageFilename string   `gorm:"type:varchar(255);not null"`
	// SearchName 是 catalog.FoldName(Name)，搜索只比较这一列
	SearchName string `gorm:"type:varchar(255);not null;default:''"`

	CreatedAt time.Time
}

func (Item) TableName() string {
	return "items"
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// 自由形式のスペック（processor, ram など）。jsonbで保存。
type Specifications map[string]any

func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Specifications) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = Specifications{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("specifications: unsupported type")
	}
	out := Specifications{}
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

func (Specifications) GormDataType() string {
	return "jsonb"
}

type Product struct {
	ID            int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string              `gorm:"type:varchar(200);not null;index" json:"name"`
	Description   string              `gorm:"type:text;not null" json:"description"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null;index" json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"discountPrice"`
	CategoryID    int64               `gorm:"not null;index" json:"categoryId"`
	Category      *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand         string              `gorm:"type:varchar(100);not null;index" json:"brand"`
	Stock         int64               `gorm:"not null;default:0" json:"stock"`
	Images        pq.StringArray      `gorm:"type:text[]" json:"images"`
	Specs         Specifications      `gorm:"column:specifications" json:"specifications"`
	Status        ProductStatus       `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Featured      bool                `gorm:"not null;default:false;index" json:"featured"`
	Rating        float64             `gorm:"not null;default:0" json:"rating"`
	ReviewCount   int64               `gorm:"not null;default:0" json:"reviewCount"`
	CreatedAt     time.Time           `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// 割引価格が有効（0より大きく定価未満）なら割引価格、それ以外は定価
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid &&
		p.DiscountPrice.Decimal.IsPositive() &&
		p.DiscountPrice.Decimal.LessThan(p.Price) {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

func (p Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

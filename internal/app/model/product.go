package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductCategory string // catalog section slug

const (
	CategoryCamphor       ProductCategory = "camphor"
	CategoryAgarbatti     ProductCategory = "agarbatti"
	CategorySambraniDhoop ProductCategory = "sambrani-dhoop"
	CategoryDeepamOil     ProductCategory = "deepam-oil"
	CategoryPoojaPowders  ProductCategory = "pooja-powders"
	CategoryAccessories   ProductCategory = "accessories"
)

var ProductCategories = []ProductCategory{
	CategoryCamphor,
	CategoryAgarbatti,
	CategorySambraniDhoop,
	CategoryDeepamOil,
	CategoryPoojaPowders,
	CategoryAccessories,
}

func (c ProductCategory) Valid() bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID               string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string          `gorm:"type:varchar(200);not null" json:"name"`
	NameInTamil      string          `gorm:"type:varchar(200)" json:"name_in_tamil,omitempty"`
	Slug             string          `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Category         ProductCategory `gorm:"type:varchar(50);index;not null" json:"category"`
	Description      string          `gorm:"type:text" json:"description"`
	ShortDescription string          `gorm:"type:varchar(500)" json:"short_description"`
	BasePrice        int64           `gorm:"not null" json:"base_price"`    // lowest variant MRP
	SellingPrice     int64           `gorm:"not null" json:"selling_price"` // lowest variant price
	Images           StringList      `json:"images"`
	ThumbnailURL     string          `gorm:"type:text" json:"thumbnail_url"`
	Tags             StringList      `json:"tags"`
	InStock          bool            `gorm:"not null;index" json:"in_stock"`
	IsFeatured       bool            `gorm:"not null;index" json:"is_featured"`
	IsBestSeller     bool            `gorm:"not null;index" json:"is_best_seller"`
	IsNewArrival     bool            `gorm:"not null" json:"is_new_arrival"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// FindVariant returns the variant with the given id.
func (p *Product) FindVariant(variantID string) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// DerivePricing sets base/selling price and thumbnail from variants and images.
func (p *Product) DerivePricing() {
	p.BasePrice, p.SellingPrice = 0, 0
	for i, v := range p.Variants {
		if i == 0 || v.MRP < p.BasePrice {
			p.BasePrice = v.MRP
		}
		if i == 0 || v.Price < p.SellingPrice {
			p.SellingPrice = v.Price
		}
	}
	p.ThumbnailURL = p.Images.First()
}

type ProductVariant struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string    `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"` // "100g Pack"
	Weight    string    `gorm:"type:varchar(50)" json:"weight,omitempty"`
	PackSize  int       `json:"pack_size,omitempty"`
	Price     int64     `gorm:"not null" json:"price"`
	MRP       int64     `gorm:"not null" json:"mrp"`
	SKU       string    `gorm:"type:varchar(64);index" json:"sku,omitempty"`
	InStock   bool      `gorm:"not null" json:"in_stock"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

type Category struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Slug         ProductCategory `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	NameInTamil  string          `gorm:"type:varchar(100)" json:"name_in_tamil"`
	Description  string          `gorm:"type:text" json:"description"`
	ImageURL     string          `gorm:"type:text" json:"image_url"`
	DisplayOrder int             `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

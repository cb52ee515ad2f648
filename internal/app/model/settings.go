package model

import (
	"time"
)

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

type BusinessSettings struct {
	Name           string `gorm:"type:varchar(150)" json:"name"`
	Tagline        string `gorm:"type:varchar(255)" json:"tagline"`
	WhatsAppNumber string `gorm:"column:whatsapp_number;type:varchar(15)" json:"whatsapp_number"`
	Email          string `gorm:"type:varchar(255)" json:"email"`
	Phone          string `gorm:"type:varchar(15)" json:"phone"`
	Address        string `gorm:"type:text" json:"address"`
	GSTNumber      string `gorm:"type:varchar(20)" json:"gst_number,omitempty"`
}

type DeliverySettings struct {
	FreeDeliveryThreshold int64      `gorm:"not null" json:"free_delivery_threshold"`
	DefaultDeliveryCharge int64      `gorm:"not null" json:"default_delivery_charge"`
	ServiceablePincodes   StringList `json:"serviceable_pincodes"`
}

type SocialSettings struct {
	Facebook  string `gorm:"type:varchar(255)" json:"facebook,omitempty"`
	Instagram string `gorm:"type:varchar(255)" json:"instagram,omitempty"`
	YouTube   string `gorm:"type:varchar(255)" json:"youtube,omitempty"`
}

type SEOSettings struct {
	DefaultTitle       string `gorm:"type:varchar(255)" json:"default_title"`
	DefaultDescription string `gorm:"type:text" json:"default_description"`
	OGImage            string `gorm:"type:text" json:"og_image"`
}

type FeatureSettings struct {
	ShowNewsletter   bool `gorm:"not null" json:"show_newsletter"`
	ShowTestimonials bool `gorm:"not null" json:"show_testimonials"`
	EnableReviews    bool `gorm:"not null" json:"enable_reviews"`
}

type SiteSettings struct {
	ID        uint             `gorm:"primarykey" json:"-"`
	Business  BusinessSettings `gorm:"embedded;embeddedPrefix:business_" json:"business"`
	Delivery  DeliverySettings `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery"`
	Social    SocialSettings   `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	SEO       SEOSettings      `gorm:"embedded;embeddedPrefix:seo_" json:"seo"`
	Features  FeatureSettings  `gorm:"embedded;embeddedPrefix:features_" json:"features"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

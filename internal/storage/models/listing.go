// internal/storage/models/listing.go
package models

// TokenListing is the persisted launch terms of one token. All amount
// columns hold 18-decimal base units as decimal strings; 256-bit values
// do not fit native integer columns.
type TokenListing struct {
	BaseModel
	TokenHandle   string `gorm:"unique;not null;type:varchar(64)"`
	Name          string `gorm:"not null;type:varchar(100)"`
	Symbol        string `gorm:"not null;type:varchar(20)"`
	TotalSupply   string `gorm:"not null;type:varchar(80)"`
	PricePerToken string `gorm:"not null;type:varchar(80)"`
	LaunchIndex   int    `gorm:"uniqueIndex;not null"`
	Creator       string `gorm:"type:varchar(100)"`
}

// internal/storage/models/trade.go
package models

// TradeRecord is one committed buy or sell against the registry.
type TradeRecord struct {
	BaseModel
	TokenHandle  string `gorm:"index;not null;type:varchar(64)"`
	Account      string `gorm:"index;not null;type:varchar(100)"`
	Side         string `gorm:"not null;type:varchar(10)"` // "buy" or "sell"
	Amount       string `gorm:"not null;type:varchar(80)"`
	NativeAmount string `gorm:"not null;type:varchar(80)"`
}

// LiquidityRecord is one committed migration of token plus native
// currency into an external pool.
type LiquidityRecord struct {
	BaseModel
	TokenHandle  string `gorm:"index;not null;type:varchar(64)"`
	Provider     string `gorm:"not null;type:varchar(100)"`
	Router       string `gorm:"not null;type:varchar(100)"`
	TokenAmount  string `gorm:"not null;type:varchar(80)"`
	NativeAmount string `gorm:"not null;type:varchar(80)"`
}

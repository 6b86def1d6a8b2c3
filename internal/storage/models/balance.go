// internal/storage/models/balance.go
package models

// TrackedBalance is the registry's bookkeeping view of what an account
// has bought through the venue net of sells, per token.
type TrackedBalance struct {
	BaseModel
	Account     string `gorm:"uniqueIndex:idx_tracked_account_token;not null;type:varchar(100)"`
	TokenHandle string `gorm:"uniqueIndex:idx_tracked_account_token;not null;type:varchar(64)"`
	Amount      string `gorm:"not null;type:varchar(80)"`
}

// LedgerBalance mirrors one row of a token's authoritative ledger,
// including the registry custody and pool accounts.
type LedgerBalance struct {
	BaseModel
	TokenHandle string `gorm:"uniqueIndex:idx_ledger_token_account;not null;type:varchar(64)"`
	Account     string `gorm:"uniqueIndex:idx_ledger_token_account;not null;type:varchar(100)"`
	Amount      string `gorm:"not null;type:varchar(80)"`
}

// LedgerState is a singleton row holding registry-wide state that is not
// attributable to a single token.
type LedgerState struct {
	BaseModel
	NativeBalance string `gorm:"not null;type:varchar(80)"`
}

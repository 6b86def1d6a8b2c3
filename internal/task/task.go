// =============================================
// File: internal/task/task.go
// =============================================
package task

import "fmt"

// OperationType defines the supported operation types
type OperationType string

const (
	OperationLaunch       OperationType = "launch"
	OperationBuy          OperationType = "buy"
	OperationSell         OperationType = "sell"
	OperationAddLiquidity OperationType = "add_liquidity"
)

// Task represents one scripted operation against the registry. Amounts
// are decimal strings (e.g. "0.0001") parsed into base units at run time.
//
// Launch tasks define Token as a script-local alias; later tasks refer
// to the launched token through the same alias.
type Task struct {
	Name          string        `yaml:"name"`
	Operation     OperationType `yaml:"operation"`
	Account       string        `yaml:"account"`
	Token         string        `yaml:"token"`
	TokenName     string        `yaml:"token_name,omitempty"`
	TokenSymbol   string        `yaml:"token_symbol,omitempty"`
	TotalSupply   string        `yaml:"total_supply,omitempty"`
	PricePerToken string        `yaml:"price_per_token,omitempty"`
	Amount        string        `yaml:"amount,omitempty"`
	Payment       string        `yaml:"payment,omitempty"`
	NativeAmount  string        `yaml:"native_amount,omitempty"`
	Router        string        `yaml:"router,omitempty"`
}

// Validate checks if the task has valid parameters
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if t.Account == "" {
		return fmt.Errorf("account cannot be empty")
	}
	if t.Token == "" {
		return fmt.Errorf("token alias cannot be empty")
	}

	switch t.Operation {
	case OperationLaunch:
		if t.TokenName == "" || t.TokenSymbol == "" {
			return fmt.Errorf("launch requires token_name and token_symbol")
		}
		if t.TotalSupply == "" {
			return fmt.Errorf("launch requires total_supply")
		}
	case OperationBuy:
		if t.Amount == "" {
			return fmt.Errorf("buy requires amount")
		}
		if t.Payment == "" {
			return fmt.Errorf("buy requires payment")
		}
	case OperationSell:
		if t.Amount == "" {
			return fmt.Errorf("sell requires amount")
		}
	case OperationAddLiquidity:
		if t.Amount == "" || t.NativeAmount == "" {
			return fmt.Errorf("add_liquidity requires amount and native_amount")
		}
		if t.Router == "" {
			return fmt.Errorf("add_liquidity requires router")
		}
	default:
		return fmt.Errorf("invalid operation: %s", t.Operation)
	}

	return nil
}

package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadTasks(t *testing.T) {
	path := writeScript(t, `
tasks:
  - name: launch test token
    operation: launch
    account: owner
    token: test
    token_name: Test Token
    token_symbol: TEST
    total_supply: "1000000"
    price_per_token: "0.0001"
  - name: alice buys
    operation: buy
    account: alice
    token: test
    amount: "1000"
    payment: "0.1"
  - name: alice sells half
    operation: sell
    account: alice
    token: test
    amount: "500"
  - name: seed the pool
    operation: add_liquidity
    account: owner
    token: test
    amount: "100000"
    native_amount: "10"
    router: uniswap-v2
`)

	m := NewManager(zaptest.NewLogger(t))
	tasks, err := m.LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, OperationLaunch, tasks[0].Operation)
	assert.Equal(t, "Test Token", tasks[0].TokenName)
	assert.Equal(t, "0.0001", tasks[0].PricePerToken)
	assert.Equal(t, OperationBuy, tasks[1].Operation)
	assert.Equal(t, "0.1", tasks[1].Payment)
	assert.Equal(t, OperationSell, tasks[2].Operation)
	assert.Equal(t, "uniswap-v2", tasks[3].Router)
}

func TestLoadTasksValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name:     "empty script",
			contents: "tasks: []",
			wantErr:  "no tasks found",
		},
		{
			name: "unknown operation",
			contents: `
tasks:
  - name: bad
    operation: stake
    account: alice
    token: test
`,
			wantErr: "invalid operation",
		},
		{
			name: "buy before launch",
			contents: `
tasks:
  - name: premature buy
    operation: buy
    account: alice
    token: test
    amount: "1"
    payment: "1"
`,
			wantErr: "not launched by an earlier task",
		},
		{
			name: "buy without payment",
			contents: `
tasks:
  - name: launch
    operation: launch
    account: owner
    token: test
    token_name: Test
    token_symbol: TST
    total_supply: "100"
  - name: buy
    operation: buy
    account: alice
    token: test
    amount: "1"
`,
			wantErr: "buy requires payment",
		},
		{
			name: "duplicate alias",
			contents: `
tasks:
  - name: first
    operation: launch
    account: owner
    token: test
    token_name: Test
    token_symbol: TST
    total_supply: "100"
  - name: second
    operation: launch
    account: owner
    token: test
    token_name: Test Again
    token_symbol: TST2
    total_supply: "100"
`,
			wantErr: "already launched",
		},
	}

	m := NewManager(zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.LoadTasks(writeScript(t, tt.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

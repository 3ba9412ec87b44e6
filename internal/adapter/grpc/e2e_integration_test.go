//go:build integration

package grpc

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// remoteClient connects to a running ledger server
func remoteClient(t *testing.T) *ledgerClient {
	t.Helper()

	conn, err := grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &ledgerClient{conn: conn}
}

// remoteContext authenticates as a fresh user so runs never share a ledger
func remoteContext() context.Context {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	md := metadata.New(map[string]string{
		"authorization": token,
		UserIDHeader:    "e2e-" + uuid.New().String(),
	})
	return metadata.NewOutgoingContext(context.Background(), md)
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	addr := os.Getenv("GRPC_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	return addr
}

// TestEndToEndFlow tests the complete flow: Wallets -> Income -> Transfer -> Export
func TestEndToEndFlow(t *testing.T) {
	client := remoteClient(t)
	ctx := remoteContext()

	// 1. Two wallets in the same currency so no rate source is needed
	mainWallet, err := client.call(ctx, MethodAddWallet, map[string]interface{}{
		"name": "Main Bank", "type": "FIAT", "baseCurrency": "USD",
	})
	require.NoError(t, err)
	savings, err := client.call(ctx, MethodAddWallet, map[string]interface{}{
		"name": "Savings", "type": "FIAT", "baseCurrency": "USD",
	})
	require.NoError(t, err)

	// 2. Income on the main wallet
	_, err = client.call(ctx, MethodAddTransaction, map[string]interface{}{
		"walletId": mainWallet["id"], "date": "2024-05-01", "amount": "1000.00",
		"currency": "USD", "type": "INCOME", "category": "Salary", "description": "Paycheck",
	})
	require.NoError(t, err)

	// 3. Move part of it
	_, err = client.call(ctx, MethodTransferFunds, map[string]interface{}{
		"sourceWalletId": mainWallet["id"], "targetWalletId": savings["id"], "amount": "250.50",
	})
	require.NoError(t, err)

	// 4. Balances are derived from the log
	state, err := client.call(ctx, MethodGetState, nil)
	require.NoError(t, err)
	balances := map[string]decimal.Decimal{}
	for _, w := range state["wallets"].([]interface{}) {
		wm := w.(map[string]interface{})
		balances[wm["id"].(string)] = decimalField(t, wm, "balance")
	}
	assert.True(t, decimal.RequireFromString("749.50").Equal(balances[mainWallet["id"].(string)]))
	assert.True(t, decimal.RequireFromString("250.50").Equal(balances[savings["id"].(string)]))

	// 5. Export carries everything
	exported, err := client.call(ctx, MethodExportState, nil)
	require.NoError(t, err)
	assert.Contains(t, exported["document"], "Transfer to Savings")
}

func TestNegativeScenarios(t *testing.T) {
	client := remoteClient(t)
	ctx := remoteContext()

	t.Run("InvalidAmount", func(t *testing.T) {
		wallet, err := client.call(ctx, MethodAddWallet, map[string]interface{}{
			"name": "Main Bank", "type": "FIAT", "baseCurrency": "USD",
		})
		require.NoError(t, err)

		_, err = client.call(ctx, MethodAddTransaction, map[string]interface{}{
			"walletId": wallet["id"], "date": "2024-05-01", "amount": "-100.00",
			"currency": "USD", "type": "INCOME", "category": "Salary",
		})
		require.Error(t, err, "negative amounts must be rejected")
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("NonExistentWallet", func(t *testing.T) {
		_, err := client.call(ctx, MethodAddTransaction, map[string]interface{}{
			"walletId": uuid.New().String(), "date": "2024-05-01", "amount": "50.00",
			"currency": "USD", "type": "EXPENSE", "category": "Food",
		})
		require.Error(t, err)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("MalformedImport", func(t *testing.T) {
		_, err := client.call(ctx, MethodImportState, map[string]interface{}{"document": "not json"})
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

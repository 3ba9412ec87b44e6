package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/orbital-ledger/internal/domain"
)

// TransferInput moves Amount (in the source wallet's currency) between two wallets
type TransferInput struct {
	SourceWalletID string
	TargetWalletID string
	Amount         decimal.Decimal
}

// TransferResult holds the two legs of a transfer
type TransferResult struct {
	Outflow domain.Transaction // EXPENSE on the source wallet
	Inflow  domain.Transaction // INCOME on the target wallet
}

// TransferFunds records a transfer as an EXPENSE/INCOME pair
// Logic:
//  1. Resolve both wallets
//  2. Convert the amount into the target's base currency; unlike AddTransaction a missing
//     rate aborts the transfer, nothing is written
//  3. Re-check both wallets, prepend [inflow, outflow] and reconcile in a single commit
func (e *Engine) TransferFunds(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transfer amount must be positive", domain.ErrInvalidInput)
	}
	if input.SourceWalletID == input.TargetWalletID {
		return nil, fmt.Errorf("%w: cannot transfer a wallet to itself", domain.ErrInvalidInput)
	}

	// 1. Resolve wallets
	source, err := e.findWallet(input.SourceWalletID)
	if err != nil {
		return nil, err
	}
	target, err := e.findWallet(input.TargetWalletID)
	if err != nil {
		return nil, err
	}

	// 2. Convert
	targetAmount := input.Amount
	if source.BaseCurrency != target.BaseCurrency {
		converted, ok := e.Converter.Convert(ctx, input.Amount, source.BaseCurrency, target.BaseCurrency)
		if !ok {
			return nil, fmt.Errorf("%w: %s to %s", domain.ErrConversionUnavailable, source.BaseCurrency, target.BaseCurrency)
		}
		targetAmount = converted
	}

	// 3. Commit both legs
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.state.FindWallet(source.ID)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, source.ID)
	}
	tgt := e.state.FindWallet(target.ID)
	if tgt == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, target.ID)
	}

	today := e.today()
	outflow := domain.Transaction{
		ID:              e.newID(),
		UserID:          e.UserID,
		WalletID:        src.ID,
		Date:            today,
		Amount:          input.Amount,
		Currency:        src.BaseCurrency,
		ConvertedAmount: input.Amount,
		Type:            domain.TransactionTypeExpense,
		Category:        domain.TransferCategory,
		Description:     "Transfer to " + tgt.Name,
	}
	inflow := domain.Transaction{
		ID:              e.newID(),
		UserID:          e.UserID,
		WalletID:        tgt.ID,
		Date:            today,
		Amount:          targetAmount,
		Currency:        tgt.BaseCurrency,
		ConvertedAmount: targetAmount,
		Type:            domain.TransactionTypeIncome,
		Category:        domain.TransferCategory,
		Description:     "Transfer from " + src.Name,
	}

	next := e.state.Clone()
	next.Transactions = append([]domain.Transaction{inflow, outflow}, next.Transactions...)
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("source_wallet_id", src.ID).
		Str("target_wallet_id", tgt.ID).
		Str("amount", input.Amount.String()).
		Str("target_amount", targetAmount.String()).
		Msg("transfer recorded")
	return &TransferResult{Outflow: outflow, Inflow: inflow}, nil
}

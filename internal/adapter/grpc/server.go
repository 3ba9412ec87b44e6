package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/dashboard"
	"github.com/simaogato/orbital-ledger/internal/usecase/ledger"
)

type handlerFunc func(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error)

// Server implements the LedgerService gRPC server
type Server struct {
	Sessions         *SessionRegistry
	DashboardService *dashboard.DashboardService
	RateProvider     domain.RateProvider

	now      func() time.Time
	handlers map[string]handlerFunc
}

// NewServer creates a new gRPC server instance
func NewServer(
	sessions *SessionRegistry,
	dashboardService *dashboard.DashboardService,
	rateProvider domain.RateProvider,
) *Server {
	s := &Server{
		Sessions:         sessions,
		DashboardService: dashboardService,
		RateProvider:     rateProvider,
		now:              time.Now,
	}
	s.handlers = map[string]handlerFunc{
		MethodGetState:            s.getState,
		MethodExportState:         s.exportState,
		MethodImportState:         s.importState,
		MethodAddWallet:           s.addWallet,
		MethodUpdateWallet:        s.updateWallet,
		MethodDeleteWallet:        s.deleteWallet,
		MethodAddTransaction:      s.addTransaction,
		MethodUpdateTransaction:   s.updateTransaction,
		MethodDeleteTransaction:   s.deleteTransaction,
		MethodTransferFunds:       s.transferFunds,
		MethodAddRecurringRule:    s.addRecurringRule,
		MethodToggleRecurringRule: s.toggleRecurringRule,
		MethodDeleteRecurringRule: s.deleteRecurringRule,
		MethodRunScheduler:        s.runScheduler,
		MethodAddCategory:         s.addCategory,
		MethodDeleteCategory:      s.deleteCategory,
		MethodGetNetWorth:         s.getNetWorth,
		MethodGetMonthlyStats:     s.getMonthlyStats,
		MethodGetCategoryMatrix:   s.getCategoryMatrix,
		MethodGetRates:            s.getRates,
	}
	return s
}

// Call dispatches one LedgerService method against the caller's ledger
func (s *Server) Call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	handler, ok := s.handlers[method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
	}

	engine, err := s.Sessions.Get(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	resp, err := handler(ctx, engine, req)
	if err != nil {
		return nil, mapError(err)
	}
	return encodeResponse(resp)
}

// GetState returns the whole ledger
func (s *Server) getState(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	return engine.Snapshot(), nil
}

// ExportState returns the ledger as an indented JSON document
func (s *Server) exportState(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	doc, err := engine.Export()
	if err != nil {
		return nil, err
	}
	return documentMessage{Document: string(doc)}, nil
}

// ImportState replaces the ledger with the given document
func (s *Server) importState(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in documentMessage
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := engine.Import(ctx, []byte(in.Document)); err != nil {
		return nil, err
	}
	return engine.Snapshot(), nil
}

func (s *Server) addWallet(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in addWalletRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return engine.AddWallet(ctx, ledger.AddWalletInput{
		Name:         in.Name,
		Kind:         in.Kind,
		BaseCurrency: in.BaseCurrency,
		Color:        in.Color,
		Icon:         in.Icon,
	})
}

func (s *Server) updateWallet(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in updateWalletRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return engine.UpdateWallet(ctx, in.ID, ledger.UpdateWalletInput{
		Name:  in.Name,
		Color: in.Color,
		Icon:  in.Icon,
	})
}

func (s *Server) deleteWallet(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in idRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := engine.DeleteWallet(ctx, in.ID); err != nil {
		return nil, err
	}
	return empty{}, nil
}

func (s *Server) addTransaction(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in addTransactionRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return engine.AddTransaction(ctx, ledger.AddTransactionInput{
		WalletID:    in.WalletID,
		Date:        in.Date,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Type:        in.Type,
		Category:    in.Category,
		Description: in.Description,
	})
}

func (s *Server) updateTransaction(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in updateTransactionRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return engine.UpdateTransaction(ctx, in.ID, ledger.UpdateTransactionInput{
		WalletID:        in.WalletID,
		Date:            in.Date,
		Amount:          in.Amount,
		Currency:        in.Currency,
		Type:            in.Type,
		Category:        in.Category,
		Description:     in.Description,
		ConvertedAmount: in.ConvertedAmount,
	})
}

func (s *Server) deleteTransaction(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in idRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := engine.DeleteTransaction(ctx, in.ID); err != nil {
		return nil, err
	}
	return empty{}, nil
}

func (s *Server) transferFunds(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in transferRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	result, err := engine.TransferFunds(ctx, ledger.TransferInput{
		SourceWalletID: in.SourceWalletID,
		TargetWalletID: in.TargetWalletID,
		Amount:         in.Amount,
	})
	if err != nil {
		return nil, err
	}
	return transferResponse{Outflow: result.Outflow, Inflow: result.Inflow}, nil
}

func (s *Server) addRecurringRule(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in addRecurringRuleRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return engine.AddRecurringRule(ctx, ledger.AddRecurringRuleInput{
		WalletID:    in.WalletID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
		Description: in.Description,
		Type:        in.Type,
		Frequency:   in.Frequency,
		StartDate:   in.StartDate,
	})
}

func (s *Server) toggleRecurringRule(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in idRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return engine.ToggleRecurringRule(ctx, in.ID)
}

func (s *Server) deleteRecurringRule(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in idRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := engine.DeleteRecurringRule(ctx, in.ID); err != nil {
		return nil, err
	}
	return empty{}, nil
}

func (s *Server) runScheduler(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	report, err := engine.RunScheduler(ctx)
	if err != nil {
		return nil, err
	}
	return newSchedulerResponse(report.Materialized, report.Skipped), nil
}

func (s *Server) addCategory(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in nameRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := engine.AddCategory(ctx, in.Name); err != nil {
		return nil, err
	}
	return categoriesResponse{Categories: engine.Categories()}, nil
}

func (s *Server) deleteCategory(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in nameRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := engine.DeleteCategory(ctx, in.Name); err != nil {
		return nil, err
	}
	return categoriesResponse{Categories: engine.Categories()}, nil
}

// GetNetWorth values every wallet in the requested currency
func (s *Server) getNetWorth(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in currencyRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	result, err := s.DashboardService.GetNetWorth(ctx, engine.Snapshot(), in.Currency, domain.DateOf(s.now()))
	if err != nil {
		return nil, err
	}

	resp := netWorthResponse{
		Currency:      result.Currency,
		Total:         result.Total,
		TodayChange:   result.TodayChange,
		ChangePercent: result.ChangePercent,
		Wallets:       make([]walletValue, 0, len(result.Wallets)),
		Unpriced:      nonNil(result.Unpriced),
	}
	for _, w := range result.Wallets {
		resp.Wallets = append(resp.Wallets, walletValue{
			WalletID: w.WalletID,
			Name:     w.Name,
			Currency: w.Currency,
			Balance:  w.Balance,
			Value:    w.Value,
			Priced:   w.Priced,
		})
	}
	return resp, nil
}

func (s *Server) getMonthlyStats(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in currencyRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	stats, err := s.DashboardService.GetMonthlyStats(ctx, engine.Snapshot(), in.Currency, in.Year, time.Month(in.Month))
	if err != nil {
		return nil, err
	}
	return monthlyStatsResponse{
		Currency: stats.Currency,
		Year:     stats.Year,
		Month:    int(stats.Month),
		Income:   stats.Income,
		Expense:  stats.Expense,
		Net:      stats.Net,
		Unpriced: nonNil(stats.Unpriced),
	}, nil
}

func (s *Server) getCategoryMatrix(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in currencyRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	matrix, err := s.DashboardService.GetCategoryMatrix(ctx, engine.Snapshot(), in.Currency, in.Year)
	if err != nil {
		return nil, err
	}
	return categoryMatrixResponse{
		Currency:   matrix.Currency,
		Year:       matrix.Year,
		Categories: matrix.Categories,
		Unpriced:   nonNil(matrix.Unpriced),
	}, nil
}

func (s *Server) getRates(ctx context.Context, engine *ledger.Engine, req *structpb.Struct) (interface{}, error) {
	var in ratesRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if s.RateProvider == nil {
		return nil, status.Error(codes.Unavailable, "no rate provider configured")
	}

	table, err := s.RateProvider.GetRates(ctx, in.Base)
	if err != nil {
		return nil, err
	}

	resp := ratesResponse{
		Base:   table.Base,
		Rates:  table.Rates,
		Source: table.Source,
		Error:  table.Error,
	}
	if resp.Rates == nil {
		resp.Rates = map[string]decimal.Decimal{}
	}
	if !table.LastUpdated.IsZero() {
		lastUpdated := table.LastUpdated
		resp.LastUpdated = &lastUpdated
	}
	return resp, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mapError maps domain errors to appropriate gRPC status codes
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrRecurringRuleNotFound),
		errors.Is(err, domain.ErrStateNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMalformedImport):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrConversionUnavailable):
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}

package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "orbital.ledger.v1.LedgerService"

// Method names of the LedgerService
const (
	MethodGetState            = "GetState"
	MethodExportState         = "ExportState"
	MethodImportState         = "ImportState"
	MethodAddWallet           = "AddWallet"
	MethodUpdateWallet        = "UpdateWallet"
	MethodDeleteWallet        = "DeleteWallet"
	MethodAddTransaction      = "AddTransaction"
	MethodUpdateTransaction   = "UpdateTransaction"
	MethodDeleteTransaction   = "DeleteTransaction"
	MethodTransferFunds       = "TransferFunds"
	MethodAddRecurringRule    = "AddRecurringRule"
	MethodToggleRecurringRule = "ToggleRecurringRule"
	MethodDeleteRecurringRule = "DeleteRecurringRule"
	MethodRunScheduler        = "RunScheduler"
	MethodAddCategory         = "AddCategory"
	MethodDeleteCategory      = "DeleteCategory"
	MethodGetNetWorth         = "GetNetWorth"
	MethodGetMonthlyStats     = "GetMonthlyStats"
	MethodGetCategoryMatrix   = "GetCategoryMatrix"
	MethodGetRates            = "GetRates"
)

// Methods lists every unary method of the LedgerService
var Methods = []string{
	MethodGetState, MethodExportState, MethodImportState,
	MethodAddWallet, MethodUpdateWallet, MethodDeleteWallet,
	MethodAddTransaction, MethodUpdateTransaction, MethodDeleteTransaction,
	MethodTransferFunds,
	MethodAddRecurringRule, MethodToggleRecurringRule, MethodDeleteRecurringRule, MethodRunScheduler,
	MethodAddCategory, MethodDeleteCategory,
	MethodGetNetWorth, MethodGetMonthlyStats, MethodGetCategoryMatrix, MethodGetRates,
}

// LedgerServiceServer is the server API for LedgerService.
// Every method takes and returns a google.protobuf.Struct holding a JSON object.
type LedgerServiceServer interface {
	Call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error)
}

// LedgerServiceDesc is the grpc.ServiceDesc for LedgerService
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods:     methodDescs(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "orbital/ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// FullMethod returns the "/service/method" path of a LedgerService method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func methodDescs() []grpc.MethodDesc {
	descs := make([]grpc.MethodDesc, 0, len(Methods))
	for _, m := range Methods {
		descs = append(descs, grpc.MethodDesc{MethodName: m, Handler: methodHandler(m)})
	}
	return descs
}

func methodHandler(method string) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(LedgerServiceServer).Call(ctx, method, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(LedgerServiceServer).Call(ctx, method, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// decodeRequest converts a Struct payload into a typed request
func decodeRequest(in *structpb.Struct, out interface{}) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request payload: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request payload: %v", err)
	}
	return nil
}

// encodeResponse converts a typed response into a Struct payload.
// resp must marshal to a JSON object.
func encodeResponse(resp interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}

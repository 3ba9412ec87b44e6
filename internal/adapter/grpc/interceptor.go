package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/orbital-ledger/internal/logger"
)

// UserIDHeader is the metadata key naming the ledger owner of a call
const UserIDHeader = "x-user-id"

type userIDKey struct{}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the original context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// UserInterceptor returns a gRPC unary server interceptor that resolves
// the ledger owner from the x-user-id header.
// Without the header the call runs as defaultUser; an empty defaultUser
// makes the header mandatory.
func UserInterceptor(defaultUser string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		userID := defaultUser
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(UserIDHeader); len(values) > 0 && strings.TrimSpace(values[0]) != "" {
				userID = strings.TrimSpace(values[0])
			}
		}

		if userID == "" {
			return nil, status.Error(codes.Unauthenticated, "missing user id")
		}

		return handler(WithUserID(ctx, userID), req)
	}
}

// LoggingInterceptor returns a gRPC unary server interceptor that logs every call
// and makes a request-scoped logger available through logger.FromContext.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		reqLog := log.With().Str("method", info.FullMethod).Logger()
		if userID := UserIDFromContext(ctx); userID != "" {
			reqLog = reqLog.With().Str("user_id", userID).Logger()
		}

		resp, err := handler(logger.WithContext(ctx, reqLog), req)

		code := status.Code(err)
		event := reqLog.Info()
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument, codes.FailedPrecondition, codes.Unauthenticated:
		default:
			event = reqLog.Error().Err(err)
		}
		event.
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call")

		return resp, err
	}
}

// WithUserID returns a context carrying the ledger owner
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the ledger owner set by UserInterceptor, or ""
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}

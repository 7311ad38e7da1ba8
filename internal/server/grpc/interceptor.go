package grpc

import (
	"context"
	"time"

	"github.com/sameershelar/toodo/internal/api"
	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/server/services"
	"github.com/sameershelar/toodo/internal/server/validation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// publicMethods are callable without an access token.
var publicMethods = map[string]bool{
	api.FullMethod(api.MethodRegister):     true,
	api.FullMethod(api.MethodLogin):        true,
	api.FullMethod(api.MethodRefreshToken): true,
	api.FullMethod(api.MethodLogout):       true,
	api.FullMethod(api.MethodPing):         true,
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, s.toStatus(ctx, services.Unauthorized("missing access token", services.ReasonMalformed, nil))
	}

	userID, err := s.auth.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return handler(context.WithValue(ctx, userIDKey, userID), req)
}

// validationInterceptor rejects requests whose message fails its validate
// tags before any handler runs.
func (s *GRPCServer) validationInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if problems := validation.Struct(req); len(problems) > 0 {
		return nil, s.toStatus(ctx, services.BadRequest(problems...))
	}
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "grpc call", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

package grpc

import (
	"context"
	"strings"

	"github.com/sameershelar/toodo/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[services.Kind]codes.Code{
	services.KindBadRequest:         codes.InvalidArgument,
	services.KindConflict:           codes.AlreadyExists,
	services.KindInvalidCredentials: codes.Unauthenticated,
	services.KindUnauthorized:       codes.Unauthenticated,
	services.KindForbidden:          codes.PermissionDenied,
	services.KindNotFound:           codes.NotFound,
}

// toStatus converts a service error into a gRPC status carrying only the
// client-safe message. Validation details are joined with "; ".
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	e := services.AsError(err)
	code, ok := kindCodes[e.Kind]
	if !ok {
		s.logger.Error(ctx, "request failed", "error", e.Cause)
		return status.Error(codes.Internal, services.MsgInternal)
	}
	if e.Kind == services.KindBadRequest {
		return status.Error(code, strings.Join(e.Details, "; "))
	}
	return status.Error(code, e.Message)
}

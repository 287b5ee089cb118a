package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

const authorizationKey = "authorization"

var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{domain.ErrUnauthorized, codes.Unauthenticated},
	{domain.ErrForbidden, codes.PermissionDenied},
	{domain.ErrNotFound, codes.NotFound},
	{domain.ErrInsufficientStock, codes.FailedPrecondition},
	{domain.ErrInvalidInput, codes.InvalidArgument},
	{domain.ErrEmailTaken, codes.AlreadyExists},
	{domain.ErrInvalidCredentials, codes.Unauthenticated},
}

// ToStatus converts a domain error into a gRPC status error. The wire code
// travels in the message so both Unauthenticated cases stay distinguishable.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return status.Error(sc.code, domain.ErrorCode(sc.err)+": "+err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// FromStatus recovers the domain sentinel from a status produced by ToStatus.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	code, msg, _ := strings.Cut(st.Message(), ": ")
	if sentinel := domain.ErrorFromCode(code); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	for _, sc := range statusCodes {
		if sc.code == st.Code() {
			return fmt.Errorf("%w: %s", sc.err, st.Message())
		}
	}
	return fmt.Errorf("rpc %s: %s", st.Code(), st.Message())
}

// WithToken attaches a bearer token to an outgoing call.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, "Bearer "+token)
}

// TokenFrom extracts the bearer token of an incoming call, "" when absent.
func TokenFrom(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(authorizationKey)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimPrefix(values[0], "Bearer ")
}

package server

import (
	"context"
	"testing"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryErrorInterceptorTranslatesDomainErrors(t *testing.T) {
	ic := UnaryErrorInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/x.y.Service/Op"}

	cases := []struct {
		err  error
		want codes.Code
	}{
		{&errs.ValidationError{Field: "name", Reason: "required"}, codes.InvalidArgument},
		{&errs.ReferenceError{Field: "state_id", Kind: "state", ID: "s-1"}, codes.InvalidArgument},
		{&errs.DuplicateError{Scope: "state.name", Value: "California"}, codes.AlreadyExists},
		{&errs.StateTransitionError{From: "completed", To: "pending"}, codes.FailedPrecondition},
		{&errs.NotFoundError{Kind: "car", ID: "c-1"}, codes.NotFound},
	}
	for _, c := range cases {
		_, err := ic(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, c.err
		})
		if got := status.Code(err); got != c.want {
			t.Fatalf("%T: got code %v, want %v", c.err, got, c.want)
		}
	}

	// 已是 status 错误的保持原样。
	orig := status.Error(codes.Unauthenticated, "nope")
	_, err := ic(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, orig
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("status errors must pass through, got %v", err)
	}

	// 无错误时不动结果。
	resp, err := ic(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}
}

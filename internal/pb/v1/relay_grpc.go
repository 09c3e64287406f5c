package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

//nolint:revive,stylecheck // Names follow the protoc-gen-go-grpc convention.
const (
	AlertRelay_PushCue_FullMethodName    = "/drowsiness.v1.AlertRelay/PushCue"
	AlertRelay_ListAlerts_FullMethodName = "/drowsiness.v1.AlertRelay/ListAlerts"
)

// AlertRelayClient is the client API for the AlertRelay service.
type AlertRelayClient interface {
	// PushCue records a cue start or stop for one subject and returns the stored alert.
	PushCue(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// ListAlerts returns every relayed alert.
	ListAlerts(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type alertRelayClient struct {
	cc grpc.ClientConnInterface
}

// NewAlertRelayClient wraps a connection into an AlertRelayClient.
func NewAlertRelayClient(cc grpc.ClientConnInterface) AlertRelayClient {
	return &alertRelayClient{cc}
}

func (c *alertRelayClient) PushCue(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlertRelay_PushCue_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alertRelayClient) ListAlerts(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlertRelay_ListAlerts_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// AlertRelayServer is the server API for the AlertRelay service.
// Implementations must embed UnimplementedAlertRelayServer.
type AlertRelayServer interface {
	PushCue(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListAlerts(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedAlertRelayServer()
}

// UnimplementedAlertRelayServer must be embedded to have forward compatible implementations.
type UnimplementedAlertRelayServer struct{}

// PushCue returns codes.Unimplemented.
func (UnimplementedAlertRelayServer) PushCue(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method PushCue not implemented")
}

// ListAlerts returns codes.Unimplemented.
func (UnimplementedAlertRelayServer) ListAlerts(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAlerts not implemented")
}

func (UnimplementedAlertRelayServer) mustEmbedUnimplementedAlertRelayServer() {}

// RegisterAlertRelayServer registers the service implementation on a gRPC server.
func RegisterAlertRelayServer(s grpc.ServiceRegistrar, srv AlertRelayServer) {
	s.RegisterService(&AlertRelay_ServiceDesc, srv)
}

//nolint:revive,stylecheck // Handler names follow the protoc-gen-go-grpc convention.
func _AlertRelay_PushCue_Handler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlertRelayServer).PushCue(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AlertRelay_PushCue_FullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlertRelayServer).PushCue(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

//nolint:revive,stylecheck // Handler names follow the protoc-gen-go-grpc convention.
func _AlertRelay_ListAlerts_Handler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlertRelayServer).ListAlerts(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AlertRelay_ListAlerts_FullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlertRelayServer).ListAlerts(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

// AlertRelay_ServiceDesc is the grpc.ServiceDesc for the AlertRelay service.
//
//nolint:gochecknoglobals,revive,stylecheck // Service descriptors are package-level by convention.
var AlertRelay_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "drowsiness.v1.AlertRelay",
	HandlerType: (*AlertRelayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PushCue",
			Handler:    _AlertRelay_PushCue_Handler,
		},
		{
			MethodName: "ListAlerts",
			Handler:    _AlertRelay_ListAlerts_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "drowsiness/v1/relay.proto",
}

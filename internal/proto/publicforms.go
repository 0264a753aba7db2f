// Package proto declares the formvault.v1.PublicForms gRPC service.
//
// Messages are protobuf well-known types, so the service needs no generated
// message code: share keys travel as StringValue and documents as Struct.
//
//	GetSharedForm(StringValue{shareKey})          -> Struct{form, workspace}
//	Submit(Struct{shareKey, data})                -> Struct{id, submittedAt}
//	ListForms(Empty) + "access_token" metadata    -> Struct{forms}
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	PublicFormsServiceName = "formvault.v1.PublicForms"

	PublicForms_GetSharedForm_FullMethodName = "/formvault.v1.PublicForms/GetSharedForm"
	PublicForms_Submit_FullMethodName        = "/formvault.v1.PublicForms/Submit"
	PublicForms_ListForms_FullMethodName     = "/formvault.v1.PublicForms/ListForms"
)

type PublicFormsServer interface {
	GetSharedForm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListForms(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedPublicFormsServer answers every method with Unimplemented.
type UnimplementedPublicFormsServer struct{}

func (UnimplementedPublicFormsServer) GetSharedForm(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSharedForm not implemented")
}

func (UnimplementedPublicFormsServer) Submit(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Submit not implemented")
}

func (UnimplementedPublicFormsServer) ListForms(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListForms not implemented")
}

func RegisterPublicFormsServer(s grpc.ServiceRegistrar, srv PublicFormsServer) {
	s.RegisterService(&PublicForms_ServiceDesc, srv)
}

func _PublicForms_GetSharedForm_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PublicFormsServer).GetSharedForm(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PublicForms_GetSharedForm_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PublicFormsServer).GetSharedForm(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _PublicForms_Submit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PublicFormsServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PublicForms_Submit_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PublicFormsServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _PublicForms_ListForms_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PublicFormsServer).ListForms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PublicForms_ListForms_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PublicFormsServer).ListForms(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var PublicForms_ServiceDesc = grpc.ServiceDesc{
	ServiceName: PublicFormsServiceName,
	HandlerType: (*PublicFormsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSharedForm", Handler: _PublicForms_GetSharedForm_Handler},
		{MethodName: "Submit", Handler: _PublicForms_Submit_Handler},
		{MethodName: "ListForms", Handler: _PublicForms_ListForms_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "formvault/v1/public_forms.proto",
}

type PublicFormsClient interface {
	GetSharedForm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListForms(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type publicFormsClient struct {
	cc grpc.ClientConnInterface
}

func NewPublicFormsClient(cc grpc.ClientConnInterface) PublicFormsClient {
	return &publicFormsClient{cc}
}

func (c *publicFormsClient) GetSharedForm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PublicForms_GetSharedForm_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *publicFormsClient) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PublicForms_Submit_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *publicFormsClient) ListForms(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PublicForms_ListForms_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

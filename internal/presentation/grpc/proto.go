package grpc

// Service descriptor for streamwise.churn.v1.ChurnService. Messages are plain
// Go structs carried by the json codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "streamwise.churn.v1.ChurnService"

// Full method names, used by the auth interceptor and clients.
const (
	MethodPredict       = "/" + serviceName + "/Predict"
	MethodGetPrediction = "/" + serviceName + "/GetPrediction"
)

// ChurnServiceServer is the server API for ChurnService.
type ChurnServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	GetPrediction(context.Context, *GetPredictionRequest) (*GetPredictionResponse, error)
	mustEmbedUnimplementedChurnServiceServer()
}

// UnimplementedChurnServiceServer provides forward-compatible default implementations.
type UnimplementedChurnServiceServer struct{}

func (UnimplementedChurnServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedChurnServiceServer) GetPrediction(context.Context, *GetPredictionRequest) (*GetPredictionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetPrediction not implemented")
}
func (UnimplementedChurnServiceServer) mustEmbedUnimplementedChurnServiceServer() {}

// RegisterChurnServiceServer registers srv with s.
func RegisterChurnServiceServer(s grpclib.ServiceRegistrar, srv ChurnServiceServer) {
	s.RegisterService(&churnServiceDesc, srv)
}

var churnServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ChurnServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
		{MethodName: "GetPrediction", Handler: getPredictionHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "streamwise/churn/v1/churn.proto",
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(PredictRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChurnServiceServer).Predict(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredict}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ChurnServiceServer).Predict(ctx, req.(*PredictRequest))
	})
}

func getPredictionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetPredictionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChurnServiceServer).GetPrediction(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetPrediction}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ChurnServiceServer).GetPrediction(ctx, req.(*GetPredictionRequest))
	})
}

// ChurnServiceClient is the client API for ChurnService.
type ChurnServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewChurnServiceClient returns a client that encodes messages as JSON.
func NewChurnServiceClient(cc grpclib.ClientConnInterface) *ChurnServiceClient {
	return &ChurnServiceClient{cc: cc}
}

func (c *ChurnServiceClient) Predict(ctx context.Context, in *PredictRequest, opts ...grpclib.CallOption) (*PredictResponse, error) {
	out := new(PredictResponse)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype("json")}, opts...)
	if err := c.cc.Invoke(ctx, MethodPredict, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChurnServiceClient) GetPrediction(ctx context.Context, in *GetPredictionRequest, opts ...grpclib.CallOption) (*GetPredictionResponse, error) {
	out := new(GetPredictionResponse)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype("json")}, opts...)
	if err := c.cc.Invoke(ctx, MethodGetPrediction, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

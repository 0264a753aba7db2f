package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/formvault/internal/logging"
	pb "github.com/dmitrijs2005/formvault/internal/proto"
	"github.com/dmitrijs2005/formvault/internal/server/services"
	"github.com/dmitrijs2005/formvault/internal/server/store"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	pb.UnimplementedPublicFormsServer
	address string
	store   *store.Store
	users   *services.UserService
	forms   *services.FormService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, st *store.Store, us *services.UserService, fs *services.FormService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		store:   st,
		users:   us,
		forms:   fs,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterPublicFormsServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

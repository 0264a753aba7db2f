package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/formvault/internal/common"
	pb "github.com/dmitrijs2005/formvault/internal/proto"
	"github.com/dmitrijs2005/formvault/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const workspaceKey ctxKey = "workspace"

// protected lists the methods that need an access token.
var protected = map[string]bool{
	pb.PublicForms_ListForms_FullMethodName: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protected[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		_, ws, err := s.users.Authenticate(ctx, accessToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, status.Error(codes.PermissionDenied, "workspace not found")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = context.WithValue(ctx, workspaceKey, ws)
	}

	return handler(ctx, req)
}

func workspaceFrom(ctx context.Context) *models.Workspace {
	ws, _ := ctx.Value(workspaceKey).(*models.Workspace)
	return ws
}

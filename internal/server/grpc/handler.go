package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) GetSharedForm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	shared, err := s.forms.PublicForm(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.NotFound, "form not found or not published")
	}

	return toStruct(shared)
}

func (s *GRPCServer) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	fields := req.GetFields()
	shareKey := fields["shareKey"].GetStringValue()
	if shareKey == "" {
		return nil, status.Error(codes.InvalidArgument, "shareKey is required")
	}
	data := fields["data"].GetStructValue().AsMap()

	sub, err := s.forms.SubmitShared(ctx, shareKey, data)
	if err != nil {
		var missing *services.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			return nil, status.Error(codes.InvalidArgument, "missing required fields: "+strings.Join(missing.Fields, ", "))
		case errors.Is(err, common.ErrorNotFound):
			return nil, status.Error(codes.NotFound, "form not found or not published")
		default:
			s.logger.Error(ctx, "submit failed", "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	s.logger.Info(ctx, "Submission received", "submission_id", sub.ID)
	return structpb.NewStruct(map[string]any{
		"id":          sub.ID,
		"submittedAt": sub.SubmittedAt,
	})
}

func (s *GRPCServer) ListForms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	ws := workspaceFrom(ctx)
	if ws == nil {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	return toStruct(map[string]any{"forms": s.store.ListFormsSummary(ws.ID)})
}

// toStruct converts v through its JSON form, so responses carry the same
// field names as the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

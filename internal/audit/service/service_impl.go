package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/audit/masking"
	"github.com/smallbiznis/payrollrecon/internal/clock"
	obslogger "github.com/smallbiznis/payrollrecon/internal/observability/logger"
	"github.com/smallbiznis/payrollrecon/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

// sensitiveKeys are masked before metadata is stored.
var sensitiveKeys = []string{"email", "user_id"}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func New(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, action string, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		Action:     action,
		TargetType: targetType,
		TargetID:   normalizePointer(targetID),
		Metadata:   datatypes.JSONMap(masking.MaskFields(metadata, sensitiveKeys...)),
		CreatedAt:  s.clock.Now().UTC(),
	}
	if requestID := obslogger.RequestIDFromContext(ctx); requestID != "" {
		entry.RequestID = &requestID
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	var resp auditdomain.ListAuditLogResponse
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return resp, auditdomain.ErrInvalidTimeRange
	}

	cursor, err := decodePageToken(req.PageToken)
	if err != nil {
		return resp, err
	}

	limit := clampPageSize(req.PageSize)
	rows, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Cursor:     cursor,
		Limit:      limit,
	})
	if err != nil {
		return resp, err
	}

	resp.PageInfo = *pagination.BuildCursorPageInfo(rows, limit, encodePageToken)
	if len(rows) > limit {
		rows = rows[:limit]
	}

	resp.AuditLogs = make([]auditdomain.AuditLog, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			resp.AuditLogs = append(resp.AuditLogs, *row)
		}
	}
	return resp, nil
}

func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return defaultPageSize
	case size > maxPageSize:
		return maxPageSize
	default:
		return size
	}
}

// decodePageToken turns an opaque page token into a keyset position. An empty
// token starts from the newest entry.
func decodePageToken(token string) (*auditdomain.AuditCursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	raw, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, auditdomain.ErrInvalidPageToken
	}
	at, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	if err != nil {
		return nil, auditdomain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(raw.ID))
	if err != nil || id == 0 {
		return nil, auditdomain.ErrInvalidPageToken
	}
	return &auditdomain.AuditCursor{ID: id, CreatedAt: at}, nil
}

func encodePageToken(last *auditdomain.AuditLog) string {
	token, err := pagination.EncodeCursor(pagination.Cursor{
		ID:        last.ID.String(),
		CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}
	return token
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

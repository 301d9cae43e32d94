package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/store"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/logger"
	"go.uber.org/zap"
)

// AuditEntry captures a single recorded action.
type AuditEntry struct {
	TenantID  string
	UserID    *string
	Username  string
	Action    string
	Resource  string
	Result    string
	IPAddress string
	Metadata  map[string]any
}

// AuditService records and queries the tenant audit trail. Recording is
// best-effort: a failed insert is logged and never propagated, so audit
// problems cannot fail the action being audited.
type AuditService struct {
	store *store.Store
	log   *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(st *store.Store) (*AuditService, error) {
	if st == nil {
		return nil, errors.New("audit service: store is required")
	}
	return &AuditService{store: st, log: logger.WithComponent("audit")}, nil
}

// Record appends an entry to the audit trail.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	ctx = ensureContext(ctx)
	if entry.TenantID == "" || entry.Action == "" {
		return
	}
	if entry.Result == "" {
		entry.Result = "success"
	}

	metadata := ""
	if len(entry.Metadata) > 0 {
		if raw, err := json.Marshal(entry.Metadata); err == nil {
			metadata = string(raw)
		}
	}

	row := models.AuditLog{
		TenantID:  entry.TenantID,
		UserID:    entry.UserID,
		Username:  entry.Username,
		Action:    entry.Action,
		Resource:  entry.Resource,
		Result:    entry.Result,
		IPAddress: entry.IPAddress,
		Metadata:  metadata,
	}
	if err := s.store.Create(ctx, "AuditLog", &row); err != nil {
		s.log.Warn("audit record failed",
			zap.String("tenant_id", entry.TenantID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// AuditListOptions narrows a trail query.
type AuditListOptions struct {
	Action   string
	Resource string
	UserID   string
	Page     store.Pagination
}

// List returns audit entries for a tenant, newest first.
func (s *AuditService) List(ctx context.Context, tenantID string, opts AuditListOptions) ([]models.AuditLog, int64, error) {
	ctx = ensureContext(ctx)
	if tenantID == "" {
		return nil, 0, apperrors.ErrTenantRequired
	}
	page := opts.Page.Normalize()

	filter := map[string]any{"tenant_id": tenantID}
	if opts.Action != "" {
		filter["action"] = opts.Action
	}
	if opts.Resource != "" {
		filter["resource"] = opts.Resource
	}
	if opts.UserID != "" {
		filter["user_id"] = opts.UserID
	}

	var total int64
	if err := s.store.DB().WithContext(ctx).Model(&models.AuditLog{}).Where(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit service: count: %w", err)
	}

	var entries []models.AuditLog
	_, err := s.store.Execute(ctx, &store.Operation{
		Model:  "AuditLog",
		Action: store.ActionFindMany,
		Filter: filter,
		Dest:   &entries,
		Order:  "created_at DESC",
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("audit service: list: %w", err)
	}
	return entries, total, nil
}

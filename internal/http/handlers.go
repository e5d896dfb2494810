package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/addon"
	"github.com/lumiforge/adpilot-backend/internal/audit"
	"github.com/lumiforge/adpilot-backend/internal/auth"
	"github.com/lumiforge/adpilot-backend/internal/billing"
	"github.com/lumiforge/adpilot-backend/internal/config"
	"github.com/lumiforge/adpilot-backend/internal/entitlement"
	app_errors "github.com/lumiforge/adpilot-backend/internal/errors"
	"github.com/lumiforge/adpilot-backend/internal/flags"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/override"
	"github.com/lumiforge/adpilot-backend/internal/plan"
	"github.com/lumiforge/adpilot-backend/internal/rbac"
	"github.com/lumiforge/adpilot-backend/internal/subscription"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

// Server represents HTTP server
type Server struct {
	authService         *auth.Service
	planService         *plan.Service
	subscriptionService *subscription.Service
	entitlementService  *entitlement.Service
	addonService        *addon.Service
	overrideService     *override.Service
	billingService      *billing.Service
	flagsService        *flags.Service
	auditService        *audit.Service
	cfg                 *config.Config
}

// NewServer creates a new HTTP server
func NewServer(
	authService *auth.Service,
	planService *plan.Service,
	subscriptionService *subscription.Service,
	entitlementService *entitlement.Service,
	addonService *addon.Service,
	overrideService *override.Service,
	billingService *billing.Service,
	flagsService *flags.Service,
	auditService *audit.Service,
	cfg *config.Config,
) *Server {
	return &Server{
		authService:         authService,
		planService:         planService,
		subscriptionService: subscriptionService,
		entitlementService:  entitlementService,
		addonService:        addonService,
		overrideService:     overrideService,
		billingService:      billingService,
		flagsService:        flagsService,
		auditService:        auditService,
		cfg:                 cfg,
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// writeDomainError maps service errors to HTTP status codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var capacityErr *app_errors.CapacityError
	var cooldownErr *app_errors.CooldownError
	var rateLimitErr *app_errors.RateLimitError
	var validationErr app_errors.ValidationError
	var invariantErr *app_errors.InvariantError

	switch {
	case errors.As(err, &capacityErr):
		s.writeJSON(w, http.StatusPaymentRequired, ErrorResponse{
			Error:   http.StatusText(http.StatusPaymentRequired),
			Message: capacityErr.Error(),
			Code:    http.StatusPaymentRequired,
			Action:  string(capacityErr.Action),
		})
	case errors.As(err, &cooldownErr):
		w.Header().Set("Retry-After", strconv.FormatInt(cooldownErr.RetryAfterSec, 10))
		s.writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:         http.StatusText(http.StatusTooManyRequests),
			Message:       cooldownErr.Error(),
			Code:          http.StatusTooManyRequests,
			Action:        string(app_errors.ActionWait),
			RetryAfterSec: cooldownErr.RetryAfterSec,
		})
	case errors.As(err, &rateLimitErr):
		s.writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:   http.StatusText(http.StatusTooManyRequests),
			Message: rateLimitErr.Error(),
			Code:    http.StatusTooManyRequests,
			Action:  string(app_errors.ActionWait),
		})
	case errors.As(err, &validationErr):
		s.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, app_errors.ErrSignatureMismatch),
		errors.Is(err, app_errors.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app_errors.ErrPermissionDenied):
		s.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app_errors.ErrPlanNotFound),
		errors.Is(err, app_errors.ErrSubscriptionNotFound),
		errors.Is(err, app_errors.ErrPaymentNotFound),
		errors.Is(err, app_errors.ErrSlotNotFound),
		errors.Is(err, app_errors.ErrCampaignNotFound),
		errors.Is(err, app_errors.ErrUserNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app_errors.ErrSubscriptionTerminal):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app_errors.ErrKillSwitchEnabled),
		errors.Is(err, app_errors.ErrAutomationDisabled):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &invariantErr):
		slog.Error("Invariant violation", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// validateRequest validates and decodes a request struct
func (s *Server) validateRequest(r *http.Request, req interface{}) error {
	return json.NewDecoder(r.Body).Decode(req)
}

// requirePermission checks the caller role against the RBAC matrix
func (s *Server) requirePermission(w http.ResponseWriter, r *http.Request, permission rbac.Permission) (*UserInfo, bool) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}

	if !s.authService.CheckPermission(claims.Role, permission) {
		s.writeError(w, http.StatusForbidden, app_errors.ErrPermissionDenied.Error())
		return nil, false
	}

	return &UserInfo{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, true
}

// Auth Handlers

// Login handles user login
// @Summary		User login
// @Description	Authenticate user with email and password
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		LoginRequest	true	"Login request"
// @Success	200		{object}	LoginResponse
// @Failure	401		{object}	ErrorResponse
// @Failure	400		{object}	ErrorResponse
// @Router		/auth/login [post]
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.Login(r.Context(), &models.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresAt,
		User: &UserInfo{
			UserID:   resp.User.UserID,
			Email:    resp.User.Email,
			FullName: resp.User.FullName,
			Role:     resp.User.Role,
		},
	})
}

// Plan Handlers

// GetPlans handles plan catalog listing
// @Summary		List plans
// @Description	List all available subscription plans
// @Tags		plans
// @Produce	json
// @Success	200	{array}		models.PlanResponse
// @Failure	500	{object}	ErrorResponse
// @Router		/plans [get]
func (s *Server) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planService.GetAllPlans(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, plans)
}

// Subscription Handlers

// GetSubscription handles getting the current subscription with capacity usage
// @Summary		Get current subscription
// @Description	Get current subscription details and capacity usage for the authenticated user
// @Tags		subscription
// @Produce	json
// @Security		BearerAuth
// @Success	200	{object}	models.GetSubscriptionResponse
// @Failure	401	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Router		/subscription [get]
func (s *Server) GetSubscription(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	details, err := s.subscriptionService.GetCurrent(r.Context(), claims.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	usage, err := s.entitlementService.GetUsage(r.Context(), claims.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.GetSubscriptionResponse{
		Subscription: details,
		Usage:        usage,
	})
}

// StartTrial handles trial subscription creation
// @Summary		Start trial
// @Description	Start a trial subscription for the authenticated user, idempotent
// @Tags		subscription
// @Produce	json
// @Security		BearerAuth
// @Success	200	{object}	models.SubscriptionDetails
// @Failure	401	{object}	ErrorResponse
// @Failure	500	{object}	ErrorResponse
// @Router		/subscription/trial [post]
func (s *Server) StartTrial(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sub, err := s.subscriptionService.EnsureTrial(r.Context(), claims.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, subscriptionToDetails(sub))
}

// Order Handlers

// CreateSubscriptionOrder handles subscription payment order creation
// @Summary		Create subscription order
// @Description	Create a payment order for a plan, to be captured by the payment provider
// @Tags		orders
// @Accept		json
// @Produce	json
// @Param		request	body		CreateSubscriptionOrderRequest	true	"Subscription order request"
// @Security		BearerAuth
// @Success	201	{object}	OrderResponse
// @Failure	401	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Router		/orders/subscription [post]
func (s *Server) CreateSubscriptionOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateSubscriptionOrderRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.PlanID == "" {
		s.writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	payment, err := s.billingService.CreateSubscriptionOrder(r.Context(), claims.UserID, req.PlanID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, OrderResponse{
		PaymentID:       payment.PaymentID,
		ProviderOrderID: payment.ProviderOrderID,
		AmountRub:       payment.AmountRub,
		PaymentFor:      payment.PaymentFor,
	})
}

// CreateSlotOrder handles addon slot payment order creation
// @Summary		Create addon slot order
// @Description	Create a payment order for extra AI campaign slots
// @Tags		orders
// @Accept		json
// @Produce	json
// @Param		request	body		CreateSlotOrderRequest	true	"Slot order request"
// @Security		BearerAuth
// @Success	201	{object}	OrderResponse
// @Failure	401	{object}	ErrorResponse
// @Failure	400	{object}	ErrorResponse
// @Router		/orders/slots [post]
func (s *Server) CreateSlotOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateSlotOrderRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.Count < 1 {
		s.writeError(w, http.StatusBadRequest, "count must be at least 1")
		return
	}

	payment, err := s.billingService.CreateSlotOrder(r.Context(), claims.UserID, req.Count)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, OrderResponse{
		PaymentID:       payment.PaymentID,
		ProviderOrderID: payment.ProviderOrderID,
		AmountRub:       payment.AmountRub,
		PaymentFor:      payment.PaymentFor,
	})
}

// Billing Handlers

// Webhook handles payment provider webhook deliveries.
// The signature is verified over the raw body before any parsing.
// @Summary		Payment provider webhook
// @Description	Receive and process a payment provider event
// @Tags		billing
// @Accept		json
// @Produce	json
// @Param		event	body		models.WebhookEvent	true	"Webhook event"
// @Success	200	{object}	models.WebhookResponse
// @Failure	401	{object}	ErrorResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	500	{object}	ErrorResponse
// @Router		/billing/webhook [post]
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	header := s.cfg.WebhookSignatureHeader
	if header == "" {
		header = "X-Webhook-Signature"
	}
	signature := r.Header.Get(header)

	if err := s.billingService.Verify(rawBody, signature); err != nil {
		actionType := string(models.AuditWebhookRejected)
		s.auditService.LogActionAsync(audit.Record{
			ActionType:   actionType,
			ActionResult: audit.ActionResultFailure,
			Details:      map[string]any{"reason": err.Error()},
		})
		s.writeDomainError(w, err)
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if event.Event == "" {
		s.writeError(w, http.StatusBadRequest, "event is required")
		return
	}

	payload := event.Payload
	if len(payload) == 0 {
		// Некоторые провайдеры кладут сущности в корень события
		payload = rawBody
	}

	resp, err := s.billingService.Dispatch(r.Context(), event.Event, payload)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// Entitlement Handlers

// CheckEntitlement handles an AI enable request for a campaign
// @Summary		Check entitlement
// @Description	Run the entitlement chain and enable AI on the campaign if allowed
// @Tags		entitlement
// @Accept		json
// @Produce	json
// @Param		request	body		models.CheckEntitlementRequest	true	"Entitlement check request"
// @Security		BearerAuth
// @Success	200	{object}	models.EntitlementDecision
// @Failure	401	{object}	ErrorResponse
// @Failure	402	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Failure	429	{object}	ErrorResponse
// @Router		/entitlement/check [post]
func (s *Server) CheckEntitlement(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req models.CheckEntitlementRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.CampaignID == "" {
		s.writeError(w, http.StatusBadRequest, "campaign_id is required")
		return
	}

	decision, err := s.entitlementService.AssertAllowed(r.Context(), claims.UserID, req.CampaignID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, decision)
}

// Admin Handlers

// UpsertOverride handles override create/replace for a user
// @Summary		Upsert limit override
// @Description	Create or replace a per-user limit override, reason is mandatory
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		user_id	path		string	true	"User ID"
// @Param		request	body		models.UpsertOverrideRequest	true	"Override upsert request"
// @Security		BearerAuth
// @Success	200	{object}	models.OverrideResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/users/{user_id}/overrides [put]
func (s *Server) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageOverrides)
	if !ok {
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var req models.UpsertOverrideRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	ov, err := s.overrideService.Upsert(r.Context(), actor.UserID, userID, &req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := models.OverrideResponse{
		UserID:    ov.UserID,
		Key:       ov.OverrideKey,
		Value:     ov.OverrideValue,
		UpdatedBy: ov.UpdatedBy,
	}
	if ov.ExpiresAt != nil {
		resp.ExpiresAt = ov.ExpiresAt.Unix()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteOverride handles override removal for a user
// @Summary		Delete limit override
// @Description	Remove a per-user limit override, no-op if absent
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		user_id	path		string	true	"User ID"
// @Param		request	body		models.DeleteOverrideRequest	true	"Override delete request"
// @Security		BearerAuth
// @Success	200	{object}	SuccessResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/users/{user_id}/overrides [delete]
func (s *Server) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageOverrides)
	if !ok {
		return
	}

	userID := r.PathValue("user_id")

	var req models.DeleteOverrideRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if err := s.overrideService.Delete(r.Context(), actor.UserID, userID, req.Key, req.Reason); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// ListOverrides handles override listing for a user
// @Summary		List limit overrides
// @Description	List all limit overrides of a user
// @Tags		admin
// @Produce	json
// @Param		user_id	path		string	true	"User ID"
// @Security		BearerAuth
// @Success	200	{array}		models.OverrideResponse
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/users/{user_id}/overrides [get]
func (s *Server) ListOverrides(w http.ResponseWriter, r *http.Request) {
	_, ok := s.requirePermission(w, r, rbac.PermissionAdminManageOverrides)
	if !ok {
		return
	}

	userID := r.PathValue("user_id")

	overrides, err := s.overrideService.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, overrides)
}

// ExtendSlot handles slot expiry extension
// @Summary		Extend addon slot
// @Description	Move an addon slot expiry forward, reason is mandatory
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		slot_id	path		string	true	"Slot ID"
// @Param		request	body		models.ExtendSlotRequest	true	"Slot extension request"
// @Security		BearerAuth
// @Success	200	{object}	models.SlotResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Router		/admin/slots/{slot_id}/extend [post]
func (s *Server) ExtendSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageSlots)
	if !ok {
		return
	}

	slotID := r.PathValue("slot_id")

	var req models.ExtendSlotRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.NewExpiresAt <= 0 {
		s.writeError(w, http.StatusBadRequest, "new_expires_at is required")
		return
	}

	slot, err := s.addonService.Extend(r.Context(), actor.UserID, slotID, time.Unix(req.NewExpiresAt, 0).UTC(), req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, slotToResponse(slot))
}

// ForceExpireSlot handles forced slot expiry
// @Summary		Force-expire addon slot
// @Description	Expire an addon slot immediately, consumption history is kept
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		slot_id	path		string	true	"Slot ID"
// @Param		request	body		models.ForceExpireSlotRequest	true	"Forced expiry request"
// @Security		BearerAuth
// @Success	200	{object}	models.SlotResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Router		/admin/slots/{slot_id}/force-expire [post]
func (s *Server) ForceExpireSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageSlots)
	if !ok {
		return
	}

	slotID := r.PathValue("slot_id")

	var req models.ForceExpireSlotRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	slot, err := s.addonService.ForceExpire(r.Context(), actor.UserID, slotID, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, slotToResponse(slot))
}

// AdjustSlotCapacity handles slot capacity adjustment
// @Summary		Adjust addon slot capacity
// @Description	Change the extra capacity of an addon slot
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		slot_id	path		string	true	"Slot ID"
// @Param		request	body		models.AdjustSlotCapacityRequest	true	"Capacity adjustment request"
// @Security		BearerAuth
// @Success	200	{object}	models.SlotResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Router		/admin/slots/{slot_id}/adjust [post]
func (s *Server) AdjustSlotCapacity(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageSlots)
	if !ok {
		return
	}

	slotID := r.PathValue("slot_id")

	var req models.AdjustSlotCapacityRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	slot, err := s.addonService.AdjustCapacity(r.Context(), actor.UserID, slotID, req.ExtraCapacity, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, slotToResponse(slot))
}

// GetFlags handles runtime flags read
// @Summary		Get runtime flags
// @Description	Get the current runtime flags record
// @Tags		admin
// @Produce	json
// @Security		BearerAuth
// @Success	200	{object}	models.FlagsResponse
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/flags [get]
func (s *Server) GetFlags(w http.ResponseWriter, r *http.Request) {
	_, ok := s.requirePermission(w, r, rbac.PermissionAdminManageFlags)
	if !ok {
		return
	}

	current, err := s.flagsService.Get(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, flagsToResponse(current))
}

// UpdateFlags handles runtime flags replacement
// @Summary		Update runtime flags
// @Description	Replace the runtime flags record, reason is mandatory
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		request	body		models.UpdateFlagsRequest	true	"Flags update request"
// @Security		BearerAuth
// @Success	200	{object}	models.FlagsResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/flags [put]
func (s *Server) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageFlags)
	if !ok {
		return
	}

	var req models.UpdateFlagsRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	updated, err := s.flagsService.Update(r.Context(), &req, actor.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, flagsToResponse(updated))
}

// AssignSubscription handles admin subscription assignment
// @Summary		Assign subscription
// @Description	Grant a user an active subscription without payment
// @Tags		admin
// @Accept		json
// @Produce	json
// @Param		user_id	path		string						true	"User ID"
// @Param		request	body		AssignSubscriptionRequest	true	"Assignment request"
// @Security		BearerAuth
// @Success	200	{object}	models.SubscriptionDetails
// @Failure	400	{object}	ErrorResponse
// @Failure	403	{object}	ErrorResponse
// @Failure	404	{object}	ErrorResponse
// @Router		/admin/users/{user_id}/subscription [post]
func (s *Server) AssignSubscription(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requirePermission(w, r, rbac.PermissionAdminManageSubs)
	if !ok {
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var req AssignSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	if req.PlanID == "" {
		s.writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	sub, err := s.subscriptionService.AssignByAdmin(r.Context(), actor.UserID, userID, req.PlanID, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, subscriptionToDetails(sub))
}

// ExpireGraceSweep handles the scheduled grace expiry sweep
// @Summary		Run grace expiry sweep
// @Description	Expire all subscriptions whose grace window has ended
// @Tags		admin
// @Produce	json
// @Security		BearerAuth
// @Success	200	{object}	models.ExpireGraceSweepResponse
// @Failure	403	{object}	ErrorResponse
// @Failure	500	{object}	ErrorResponse
// @Router		/admin/subscriptions/expire-grace [post]
func (s *Server) ExpireGraceSweep(w http.ResponseWriter, r *http.Request) {
	_, ok := s.requirePermission(w, r, rbac.PermissionAdminManageSubs)
	if !ok {
		return
	}

	resp, err := s.subscriptionService.ExpireGraceSweep(r.Context(), time.Now().UTC())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// GetAuditLogs handles audit logs listing
// @Summary		List audit logs
// @Description	List audit logs with optional filters
// @Tags		admin
// @Produce	json
// @Param		user_id		query		string	false	"Filter by user ID"
// @Param		actor_id	query		string	false	"Filter by actor ID"
// @Param		action_type	query		string	false	"Filter by action type"
// @Param		result		query		string	false	"Filter by result"
// @Param		from		query		string	false	"RFC3339 lower bound"
// @Param		to			query		string	false	"RFC3339 upper bound"
// @Param		limit		query		int		false	"Page size"	default(100)
// @Security		BearerAuth
// @Success	200	{object}	models.GetAuditLogsResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/audit-logs [get]
func (s *Server) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	_, ok := s.requirePermission(w, r, rbac.PermissionAdminViewLogs)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		UserID:     q.Get("user_id"),
		ActorID:    q.Get("actor_id"),
		ActionType: q.Get("action_type"),
		Result:     q.Get("result"),
	}

	if fromStr := q.Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "from must be RFC3339")
			return
		}
		filter.From = &from
	}
	if toStr := q.Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "to must be RFC3339")
			return
		}
		filter.To = &to
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	logs, err := s.auditService.ListAuditLogs(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.GetAuditLogsResponse{
		Logs:  logs,
		Total: int64(len(logs)),
		Limit: filter.Limit,
	})
}

// Health handles health check
// @Summary		Health check
// @Description	Check API health status
// @Tags		health
// @Produce	json
// @Success	200	{object}	HealthResponse
// @Router		/health [get]
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// slotToResponse converts a storage slot row to the API model
func slotToResponse(slot *ydb.AddonSlot) *models.SlotResponse {
	resp := &models.SlotResponse{
		SlotID:        slot.SlotID,
		UserID:        slot.UserID,
		ExtraCapacity: slot.ExtraCapacity,
		PurchasedAt:   slot.PurchasedAt.Unix(),
		ExpiresAt:     slot.ExpiresAt.Unix(),
	}
	if slot.ConsumedByResourceID != nil {
		resp.ConsumedByResourceID = *slot.ConsumedByResourceID
	}
	if slot.ConsumedAt != nil {
		resp.ConsumedAt = slot.ConsumedAt.Unix()
	}
	return resp
}

// flagsToResponse converts a runtime flags row to the API model
func flagsToResponse(f *ydb.RuntimeFlags) *models.FlagsResponse {
	return &models.FlagsResponse{
		KillSwitch:          f.KillSwitch,
		AIAutomationEnabled: f.AIAutomationEnabled,
		Version:             f.Version,
		UpdatedBy:           f.UpdatedBy,
		UpdatedAt:           f.UpdatedAt.Unix(),
	}
}

// subscriptionToDetails converts a subscription row to the API model
func subscriptionToDetails(sub *ydb.Subscription) *models.SubscriptionDetails {
	details := &models.SubscriptionDetails{
		SubscriptionID:  sub.SubscriptionID,
		PlanID:          sub.PlanID,
		Status:          sub.Status,
		AICampaignLimit: sub.AICampaignLimit,
		AdAccountLimit:  sub.AdAccountLimit,
		IsTrial:         sub.IsTrial,
		StartsAt:        sub.StartsAt.Unix(),
		EndsAt:          sub.EndsAt.Unix(),
		BillingCycle:    sub.BillingCycle,
	}
	if sub.GraceEndsAt != nil {
		details.GraceEndsAt = sub.GraceEndsAt.Unix()
	}
	return details
}

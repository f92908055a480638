package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/service"
)

type SettingsHandler struct {
	svc *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/settings/organization", h.organization)
	rg.PUT("/settings/organization", h.updateOrganization)
	rg.GET("/settings/notifications", h.notifications)
	rg.PUT("/settings/notifications", h.updateNotifications)

	rg.GET("/users", h.listUsers)
	rg.POST("/users", h.addUser)
	rg.PATCH("/users/:id", h.updateUser)
	rg.DELETE("/users/:id", h.deleteUser)
}

func (h *SettingsHandler) organization(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	settings, err := h.svc.Organization(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, settings)
}

type organizationRequest struct {
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

func (h *SettingsHandler) updateOrganization(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req organizationRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.svc.UpdateOrganization(c.Request.Context(), &domain.OrganizationSettings{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
	}, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, settings)
}

func (h *SettingsHandler) notifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	settings, err := h.svc.Notifications(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, settings)
}

type notificationsRequest struct {
	SMSEnabled   bool `json:"sms_enabled"`
	EmailEnabled bool `json:"email_enabled"`

	ReadyPickupSMSTemplate       string `json:"ready_pickup_sms_template"`
	ReadyPickupEmailTemplate     string `json:"ready_pickup_email_template"`
	OverdueReminderSMSTemplate   string `json:"overdue_reminder_sms_template"`
	OverdueReminderEmailTemplate string `json:"overdue_reminder_email_template"`
	SpecialOrderSMSTemplate      string `json:"special_order_sms_template"`
	SpecialOrderEmailTemplate    string `json:"special_order_email_template"`
}

func (h *SettingsHandler) updateNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req notificationsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.svc.UpdateNotifications(c.Request.Context(), &domain.NotificationSettings{
		SMSEnabled:                   req.SMSEnabled,
		EmailEnabled:                 req.EmailEnabled,
		ReadyPickupSMSTemplate:       req.ReadyPickupSMSTemplate,
		ReadyPickupEmailTemplate:     req.ReadyPickupEmailTemplate,
		OverdueReminderSMSTemplate:   req.OverdueReminderSMSTemplate,
		OverdueReminderEmailTemplate: req.OverdueReminderEmailTemplate,
		SpecialOrderSMSTemplate:      req.SpecialOrderSMSTemplate,
		SpecialOrderEmailTemplate:    req.SpecialOrderEmailTemplate,
	}, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, settings)
}

func (h *SettingsHandler) listUsers(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	users, err := h.svc.ListUsers(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, users)
}

type addUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (h *SettingsHandler) addUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req addUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.AddUser(c.Request.Context(), &service.CreateUserCommand{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
	}, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, user)
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

func (h *SettingsHandler) updateUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &service.UpdateUserCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		cmd.Role = &role
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, cmd, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, user)
}

func (h *SettingsHandler) deleteUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id, actor, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

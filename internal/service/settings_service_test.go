package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/repository"
)

func newSettingsService(store *repository.MemoryStore) *SettingsService {
	audit := NewAuditService(store.Audit(), zap.NewNop())
	return NewSettingsService(store.Settings(), audit, zap.NewNop())
}

func TestUpdateOrganization(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	admin := newTestActor(domain.RoleAdmin)
	ctx := context.Background()

	saved, err := svc.UpdateOrganization(ctx, &domain.OrganizationSettings{
		Name:          "Corner Pharmacy",
		LicenseNumber: "PH-99812",
	}, admin, "127.0.0.1")
	if err != nil {
		t.Fatalf("UpdateOrganization: %v", err)
	}
	if saved.PharmacyID != admin.PharmacyID {
		t.Fatalf("pharmacy_id = %v, want %v", saved.PharmacyID, admin.PharmacyID)
	}

	got, err := svc.Organization(ctx, admin)
	if err != nil {
		t.Fatalf("Organization: %v", err)
	}
	if got.Name != "Corner Pharmacy" || got.LicenseNumber != "PH-99812" {
		t.Fatalf("settings = %+v", got)
	}

	// Second save replaces the row rather than creating a sibling.
	if _, err := svc.UpdateOrganization(ctx, &domain.OrganizationSettings{Name: "Corner Pharmacy Ltd"}, admin, "127.0.0.1"); err != nil {
		t.Fatalf("second UpdateOrganization: %v", err)
	}
	got, err = svc.Organization(ctx, admin)
	if err != nil {
		t.Fatalf("Organization: %v", err)
	}
	if got.Name != "Corner Pharmacy Ltd" {
		t.Fatalf("name after upsert = %q", got.Name)
	}
}

func TestUpdateOrganizationForbidden(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	pharmacist := newTestActor(domain.RolePharmacist)

	_, err := svc.UpdateOrganization(context.Background(), &domain.OrganizationSettings{Name: "X"}, pharmacist, "127.0.0.1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateNotifications(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	admin := newTestActor(domain.RoleAdmin)
	ctx := context.Background()

	_, err := svc.UpdateNotifications(ctx, &domain.NotificationSettings{
		SMSEnabled:             true,
		ReadyPickupSMSTemplate: "Hi {name}, your prescription is ready.",
	}, admin, "127.0.0.1")
	if err != nil {
		t.Fatalf("UpdateNotifications: %v", err)
	}

	got, err := svc.Notifications(ctx, admin)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if !got.SMSEnabled || got.ReadyPickupSMSTemplate == "" {
		t.Fatalf("settings = %+v", got)
	}
}

func TestAddUser(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	admin := newTestActor(domain.RoleAdmin)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, &CreateUserCommand{
		Email:     "j.ng@cornerpharmacy.example",
		Password:  "correct horse battery",
		FirstName: "Jess",
		LastName:  "Ng",
		Role:      domain.RoleTechnician,
	}, admin, "127.0.0.1")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if user.PharmacyID != admin.PharmacyID || !user.IsActive {
		t.Fatalf("user = %+v", user)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	users, err := svc.ListUsers(ctx, admin)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
}

func TestAddUserValidation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	admin := newTestActor(domain.RoleAdmin)

	_, err := svc.AddUser(context.Background(), &CreateUserCommand{
		Password: "short",
		Role:     domain.Role("intern"),
	}, admin, "127.0.0.1")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("got %d validation messages, want 3: %v", len(verr.Fields), verr.Fields)
	}
}

func TestUpdateUserRole(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	admin := newTestActor(domain.RoleAdmin)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, &CreateUserCommand{
		Email:    "p.wade@cornerpharmacy.example",
		Password: "longenoughpassword",
		Role:     domain.RoleTechnician,
	}, admin, "127.0.0.1")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	newRole := domain.RolePharmacist
	inactive := false
	got, err := svc.UpdateUser(ctx, user.ID, &UpdateUserCommand{Role: &newRole, IsActive: &inactive}, admin, "127.0.0.1")
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got.Role != domain.RolePharmacist || got.IsActive {
		t.Fatalf("user after update = %+v", got)
	}
}

func TestDeleteUser(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newSettingsService(store)
	admin := newTestActor(domain.RoleAdmin)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, &CreateUserCommand{
		Email:    "m.cole@cornerpharmacy.example",
		Password: "longenoughpassword",
		Role:     domain.RoleTechnician,
	}, admin, "127.0.0.1")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	// Pharmacists cannot delete users at all.
	pharmacist := newTestActor(domain.RolePharmacist)
	pharmacist.PharmacyID = admin.PharmacyID
	if err := svc.DeleteUser(ctx, user.ID, pharmacist, "127.0.0.1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("pharmacist delete err = %v, want ErrForbidden", err)
	}

	// Admins cannot delete their own account.
	var verr *ValidationError
	if err := svc.DeleteUser(ctx, admin.UserID, admin, "127.0.0.1"); !errors.As(err, &verr) {
		t.Fatalf("self-delete err = %v, want *ValidationError", err)
	}

	if err := svc.DeleteUser(ctx, user.ID, admin, "127.0.0.1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	users, err := svc.ListUsers(ctx, admin)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("got %d users after delete, want 0", len(users))
	}
}

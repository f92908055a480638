package domain

import "testing"

func TestCapabilitiesFor(t *testing.T) {
	admin := CapabilitiesFor(RoleAdmin)
	if !admin.CanDeleteUsers || !admin.CanEditSettings || !admin.CanManageInventory || !admin.CanSendNotifications {
		t.Fatalf("admin missing capabilities: %+v", admin)
	}

	pharm := CapabilitiesFor(RolePharmacist)
	if pharm.CanDeleteUsers || pharm.CanEditSettings {
		t.Fatalf("pharmacist should not manage users/settings: %+v", pharm)
	}
	if !pharm.CanManageInventory || !pharm.CanSendNotifications {
		t.Fatalf("pharmacist missing inventory/notification capabilities: %+v", pharm)
	}

	tech := CapabilitiesFor(RoleTechnician)
	if tech != (Capabilities{}) {
		t.Fatalf("technician should have no elevated capabilities: %+v", tech)
	}

	if CapabilitiesFor(Role("intruder")) != (Capabilities{}) {
		t.Fatalf("unknown role must get the empty set")
	}
}

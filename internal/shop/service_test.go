package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/willtrojniak/TabApp/internal/authz"
)

func newTestShop(t *testing.T) (*Service, *InMemoryRepository, *Shop) {
	t.Helper()
	repo := NewInMemoryRepository()
	svc := NewService(repo)

	s, err := svc.CreateShop(context.Background(), "owner-1", ShopCreate{
		Name:           "Corner Cafe",
		PaymentMethods: []string{PaymentMethodChartstring, PaymentMethodInPerson},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, repo, s
}

func TestCreateShopValidatesPaymentMethods(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	_, err := svc.CreateShop(context.Background(), "owner-1", ShopCreate{
		Name:           "Corner Cafe",
		PaymentMethods: []string{"credit card"},
	})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got %v", err)
	}

	_, err = svc.CreateShop(context.Background(), "owner-1", ShopCreate{Name: "Corner Cafe"})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod for empty list, got %v", err)
	}
}

func TestAuthorizeOwnerHasEveryRole(t *testing.T) {
	svc, _, s := newTestShop(t)
	ctx := context.Background()

	for _, want := range []authz.Role{authz.RoleManageItems, authz.RoleManageTabs, authz.RoleManageOrders, authz.RoleReadTabs} {
		if err := svc.Authorize(ctx, s.ID, "owner-1", want); err != nil {
			t.Errorf("owner should hold role %b, got %v", want, err)
		}
	}
	if err := svc.Authorize(ctx, s.ID, "stranger", authz.RoleReadTabs); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for stranger, got %v", err)
	}
}

func TestInviteGrantsRolesButNeverOwnership(t *testing.T) {
	svc, repo, s := newTestShop(t)
	ctx := context.Background()
	repo.RegisterUser("user-2", "staff@example.com")

	err := svc.InviteMember(ctx, s.ID, "owner-1", InviteCreate{
		Email: "staff@example.com",
		Roles: authz.RoleOwner | authz.RoleManageOrders,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Authorize(ctx, s.ID, "user-2", authz.RoleManageOrders); err != nil {
		t.Errorf("invited member should hold granted role, got %v", err)
	}
	if err := svc.Authorize(ctx, s.ID, "user-2", authz.RoleManageItems); !errors.Is(err, ErrForbidden) {
		t.Errorf("invited member must not hold ungranted roles, got %v", err)
	}

	members, err := svc.ListMembers(ctx, s.ID, "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 1 || members[0].Roles&authz.RoleOwner != 0 {
		t.Errorf("invite must strip the owner bit, got %+v", members)
	}
}

func TestInviteRequiresOwner(t *testing.T) {
	svc, repo, s := newTestShop(t)
	repo.RegisterUser("user-2", "staff@example.com")

	err := svc.InviteMember(context.Background(), s.ID, "user-2", InviteCreate{
		Email: "staff@example.com",
		Roles: authz.RoleManageOrders,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestRemoveMemberSelfService(t *testing.T) {
	svc, repo, s := newTestShop(t)
	ctx := context.Background()
	repo.RegisterUser("user-2", "staff@example.com")

	if err := svc.InviteMember(ctx, s.ID, "owner-1", InviteCreate{Email: "staff@example.com", Roles: authz.RoleReadTabs}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Members may leave on their own; they cannot remove others.
	if err := svc.RemoveMember(ctx, s.ID, "user-2", "owner-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if err := svc.RemoveMember(ctx, s.ID, "user-2", "user-2"); err != nil {
		t.Errorf("self removal should succeed, got %v", err)
	}
	if err := svc.Authorize(ctx, s.ID, "user-2", authz.RoleReadTabs); !errors.Is(err, ErrForbidden) {
		t.Errorf("removed member should lose roles, got %v", err)
	}
}

func TestUpdateShopOwnerOnly(t *testing.T) {
	svc, _, s := newTestShop(t)
	ctx := context.Background()

	_, err := svc.UpdateShop(ctx, s.ID, "stranger", ShopCreate{
		Name:           "Renamed",
		PaymentMethods: []string{PaymentMethodInPerson},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	d, err := svc.UpdateShop(ctx, s.ID, "owner-1", ShopCreate{
		Name:           "Renamed",
		PaymentMethods: []string{PaymentMethodInPerson},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", d.Name)
	}
}

func TestLocationCRUDRequiresManageLocations(t *testing.T) {
	svc, repo, s := newTestShop(t)
	ctx := context.Background()
	repo.RegisterUser("user-2", "staff@example.com")

	if _, err := svc.CreateLocation(ctx, s.ID, "user-2", LocationCreate{Name: "Patio"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	l, err := svc.CreateLocation(ctx, s.ID, "owner-1", LocationCreate{Name: "Patio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.UpdateLocation(ctx, s.ID, l.ID, "owner-1", LocationCreate{Name: "Terrace"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.DeleteLocation(ctx, s.ID, l.ID, "owner-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPaymentMethodsLookup(t *testing.T) {
	svc, _, s := newTestShop(t)

	methods, err := svc.PaymentMethods(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(methods) != 2 {
		t.Errorf("methods = %v, want both accepted methods", methods)
	}

	name, err := svc.ShopName(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Corner Cafe" {
		t.Errorf("name = %q, want Corner Cafe", name)
	}
}

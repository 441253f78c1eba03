package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/zabotahq/zabota/internal/security"
)

func TestCreateFamilyAndJoinByCode(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	admin := registerTestUser(t, app, "smith-admin@example.com")
	member := registerTestUser(t, app, "smith-member@example.com")

	family := createTestFamily(t, app, admin.Token, "Smiths")
	if family.Name != "Smiths" {
		t.Fatalf("unexpected family name %q", family.Name)
	}
	if len(family.InviteCode) != security.InviteCodeLength {
		t.Fatalf("invite code %q has length %d", family.InviteCode, len(family.InviteCode))
	}
	if !family.Founder.IsAdmin || family.Founder.RoleInFamily != "Admin" {
		t.Fatalf("founder must be admin: %+v", family.Founder)
	}

	joinTestFamily(t, app, member.Token, family.InviteCode, member.User.ID)

	status, parsed := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/families/%d/members", family.ID), admin.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("members: status %d, envelope %+v", status, parsed)
	}

	var members []familyMemberDTO
	decodeData(t, parsed, &members)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].UserID != admin.User.ID || !members[0].IsAdmin {
		t.Fatalf("expected admin listed first, got %+v", members[0])
	}
	if members[1].UserID != member.User.ID || members[1].RoleInFamily != "Member" || members[1].IsAdmin {
		t.Fatalf("expected plain member, got %+v", members[1])
	}
}

func TestJoinByCodeErrors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	admin := registerTestUser(t, app, "host@example.com")
	guest := registerTestUser(t, app, "guest@example.com")
	family := createTestFamily(t, app, admin.Token, "Ивановы")

	status, parsed := doJSON(t, app, http.MethodPost, "/families/join-by-code", guest.Token, fiber.Map{
		"inviteCode": "NOSUCHCODE99",
		"userId":     guest.User.ID,
	})
	if status != http.StatusNotFound || parsed.Code != int(CodeNotFound) {
		t.Fatalf("unknown code: expected 404, got %d (%+v)", status, parsed)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/families/join-by-code", guest.Token, fiber.Map{
		"inviteCode": family.InviteCode,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("missing userId: expected 400, got %d", status)
	}

	joinTestFamily(t, app, guest.Token, family.InviteCode, guest.User.ID)
	status, parsed = doJSON(t, app, http.MethodPost, "/families/join-by-code", guest.Token, fiber.Map{
		"inviteCode": family.InviteCode,
		"userId":     guest.User.ID,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("double join: expected 400, got %d (%+v)", status, parsed)
	}
	if !strings.Contains(parsed.Description, "уже состоит") {
		t.Fatalf("unexpected description %q", parsed.Description)
	}
}

func TestCreateFamilyRejectsSecondMembership(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	admin := registerTestUser(t, app, "founder@example.com")
	createTestFamily(t, app, admin.Token, "Первая")

	status, parsed := doJSON(t, app, http.MethodPost, "/families", admin.Token, fiber.Map{"name": "Вторая"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%+v)", status, parsed)
	}
}

func TestUpdateMemberIsAdminGated(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	admin := registerTestUser(t, app, "gate-admin@example.com")
	member := registerTestUser(t, app, "gate-member@example.com")
	family := createTestFamily(t, app, admin.Token, "Ивановы")
	joinTestFamily(t, app, member.Token, family.InviteCode, member.User.ID)

	memberPath := fmt.Sprintf("/families/%d/members/%d", family.ID, member.User.ID)

	status, parsed := doJSON(t, app, http.MethodPatch, memberPath, member.Token, fiber.Map{"isAdmin": true})
	if status != http.StatusForbidden || parsed.Code != int(CodeForbidden) {
		t.Fatalf("self-promotion: expected 403, got %d (%+v)", status, parsed)
	}

	status, parsed = doJSON(t, app, http.MethodPatch, memberPath, admin.Token, fiber.Map{
		"roleInFamily": "Caregiver",
		"isAdmin":      true,
	})
	if status != http.StatusOK {
		t.Fatalf("admin update: status %d (%+v)", status, parsed)
	}
	var updated familyMemberDTO
	decodeData(t, parsed, &updated)
	if updated.RoleInFamily != "Caregiver" || !updated.IsAdmin {
		t.Fatalf("update not applied: %+v", updated)
	}

	status, _ = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/families/%d/members/%d", family.ID, member.User.ID+100), admin.Token, fiber.Map{"isAdmin": true})
	if status != http.StatusNotFound {
		t.Fatalf("unknown member: expected 404, got %d", status)
	}
}

func TestRemoveMemberClearsMembershipAndAllowsRejoin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	admin := registerTestUser(t, app, "remove-admin@example.com")
	member := registerTestUser(t, app, "remove-member@example.com")
	family := createTestFamily(t, app, admin.Token, "Смирновы")
	joinTestFamily(t, app, member.Token, family.InviteCode, member.User.ID)

	memberPath := fmt.Sprintf("/families/%d/members/%d", family.ID, member.User.ID)

	status, _ := doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/families/%d/members/%d", family.ID, admin.User.ID), member.Token, nil)
	if status != http.StatusForbidden {
		t.Fatalf("non-admin removal: expected 403, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodDelete, memberPath, admin.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("admin removal: expected 204, got %d", status)
	}

	status, parsed := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/families/%d/members", family.ID), admin.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("members after removal: status %d", status)
	}
	var members []familyMemberDTO
	decodeData(t, parsed, &members)
	if len(members) != 1 || members[0].UserID != admin.User.ID {
		t.Fatalf("expected only the admin left, got %+v", members)
	}

	// Removal frees the user to join again.
	joinTestFamily(t, app, member.Token, family.InviteCode, member.User.ID)
}

func TestLeaveFamily(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	admin := registerTestUser(t, app, "leave-admin@example.com")
	member := registerTestUser(t, app, "leave-member@example.com")
	family := createTestFamily(t, app, admin.Token, "Смирновы")
	joinTestFamily(t, app, member.Token, family.InviteCode, member.User.ID)

	leavePath := fmt.Sprintf("/families/%d/leave", family.ID)

	status, _ := doJSON(t, app, http.MethodPost, leavePath, member.Token, fiber.Map{"userId": admin.User.ID})
	if status != http.StatusForbidden {
		t.Fatalf("removing another member without admin: expected 403, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodPost, leavePath, member.Token, fiber.Map{"userId": member.User.ID})
	if status != http.StatusNoContent {
		t.Fatalf("self leave: expected 204, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodPost, leavePath, member.Token, fiber.Map{"userId": member.User.ID})
	if status != http.StatusNotFound {
		t.Fatalf("leaving twice: expected 404, got %d", status)
	}
}

func TestFamilyEndpointsRequireAuth(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	status, parsed := doJSON(t, app, http.MethodPost, "/families", "", fiber.Map{"name": "Никто"})
	if status != http.StatusUnauthorized || parsed.Code != int(CodeUnauthorized) {
		t.Fatalf("expected 401, got %d (%+v)", status, parsed)
	}
}

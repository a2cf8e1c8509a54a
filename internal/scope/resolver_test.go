package scope

import (
	"context"
	"testing"

	"pensionadvisor/internal/identity"
)

type fakeLookup struct {
	users    map[int]identity.User
	advisors map[[2]int]bool
}

func (f *fakeLookup) User(ctx context.Context, id int) (identity.User, bool, error) {
	u, ok := f.users[id]
	return u, ok, nil
}

func (f *fakeLookup) IsClient(ctx context.Context, advisorID, residentID int) (bool, error) {
	return f.advisors[[2]int{advisorID, residentID}], nil
}

func newFixture() *fakeLookup {
	return &fakeLookup{
		users: map[int]identity.User{
			520:  {ID: 520, Role: identity.RoleResident},
			1001: {ID: 1001, Role: identity.RoleAdvisor},
			7:    {ID: 7, Role: identity.RoleRegulator},
		},
		advisors: map[[2]int]bool{
			{1001, 202}: true,
		},
	}
}

func TestResidentAlwaysSelf(t *testing.T) {
	r := &Resolver{Lookup: newFixture()}
	id, ctx, err := r.Resolve(context.Background(), 520, "risk profile for user 999")
	if err != nil || id != 520 || ctx != Self {
		t.Fatalf("got (%d, %s, %v); want (520, self, nil)", id, ctx, err)
	}
}

func TestAdvisorMatchingClient(t *testing.T) {
	r := &Resolver{Lookup: newFixture()}
	id, ctx, err := r.Resolve(context.Background(), 1001, "risk profile for user 202")
	if err != nil || id != 202 || ctx != Client {
		t.Fatalf("got (%d, %s, %v); want (202, client, nil)", id, ctx, err)
	}
}

func TestAdvisorNonClientSilentlyFallsBack(t *testing.T) {
	r := &Resolver{Lookup: newFixture()}
	id, ctx, err := r.Resolve(context.Background(), 1001, "risk profile for user 555")
	if err != nil || id != 1001 || ctx != Self {
		t.Fatalf("got (%d, %s, %v); want (1001, self, nil) — non-client access must not leak", id, ctx, err)
	}
}

func TestRegulatorAnyTarget(t *testing.T) {
	r := &Resolver{Lookup: newFixture()}
	id, ctx, err := r.Resolve(context.Background(), 7, "geographic risk analysis for user 88")
	if err != nil || id != 88 || ctx != Client {
		t.Fatalf("got (%d, %s, %v); want (88, client, nil)", id, ctx, err)
	}
}

func TestSelfReferenceIsDiscarded(t *testing.T) {
	r := &Resolver{Lookup: newFixture()}
	id, ctx, err := r.Resolve(context.Background(), 520, "show risk for user 520")
	if err != nil || id != 520 || ctx != Self {
		t.Fatalf("got (%d, %s, %v); want (520, self, nil)", id, ctx, err)
	}
}

func TestUnknownCaller(t *testing.T) {
	r := &Resolver{Lookup: newFixture()}
	id, ctx, err := r.Resolve(context.Background(), 9999, "anything")
	if err != nil || id != 9999 || ctx != Unknown {
		t.Fatalf("got (%d, %s, %v); want (9999, unknown, nil)", id, ctx, err)
	}
}

package reqctx

import (
	"context"
	"testing"
)

func TestSetAndGet(t *testing.T) {
	ctx := Set(context.Background(), 520, "how much will my pension be?")

	uid, ok := UserID(ctx)
	if !ok || uid != 520 {
		t.Fatalf("UserID() = %d, %v; want 520, true", uid, ok)
	}

	q, ok := Query(ctx)
	if !ok || q != "how much will my pension be?" {
		t.Fatalf("Query() = %q, %v; want the original query, true", q, ok)
	}
}

func TestUnsetContextIsIsolated(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Fatal("UserID() on a bare context should report false")
	}
}

func TestConcurrentRequestsDoNotLeak(t *testing.T) {
	a := Set(context.Background(), 1, "query a")
	b := Set(context.Background(), 2, "query b")

	uidA, _ := UserID(a)
	uidB, _ := UserID(b)
	if uidA != 1 || uidB != 2 {
		t.Fatalf("contexts leaked into each other: a=%d b=%d", uidA, uidB)
	}
}

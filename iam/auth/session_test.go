package auth

import (
	"testing"

	"github.com/nexaedu/campus/pkg/kernel"
)

func TestSessionPutIsIdempotent(t *testing.T) {
	sess := NewSession(kernel.NewSessionID("s1"), map[string]string{"k": "v"})

	if sess.IsDirty() {
		t.Fatal("freshly loaded session should not be dirty")
	}

	sess.Put("k", "v")
	if sess.IsDirty() {
		t.Fatal("writing the current value should be a no-op")
	}

	sess.Put("k", "v2")
	if !sess.IsDirty() {
		t.Fatal("writing a new value should dirty the session")
	}
}

func TestSessionForgetMissingKeyIsNoOp(t *testing.T) {
	sess := NewSession(kernel.NewSessionID("s1"), nil)

	sess.Forget("ausente")
	if sess.IsDirty() {
		t.Fatal("forgetting a missing key should be a no-op")
	}
}

func TestSessionRegeneratePreservesValues(t *testing.T) {
	sess := NewSession(kernel.NewSessionID("s1"), map[string]string{
		"user_id":            "u1",
		"escola_id_pendente": "esc-a",
	})
	oldID := sess.ID()

	sess.Regenerate()

	if sess.ID() == oldID {
		t.Fatal("session id should change on regeneration")
	}
	if sess.StaleID() != oldID {
		t.Fatalf("stale id = %q, want %q", sess.StaleID(), oldID)
	}
	if sess.UserID() != kernel.NewUserID("u1") {
		t.Fatal("values should survive regeneration")
	}
	if sess.PendingTenant() != kernel.NewTenantID("esc-a") {
		t.Fatal("pending selection should survive regeneration")
	}

	// Rotação dupla no mesmo request mantém o stale id original
	intermediate := sess.ID()
	sess.Regenerate()
	if sess.StaleID() != oldID {
		t.Fatalf("stale id = %q, want original %q after double rotation", sess.StaleID(), oldID)
	}
	if sess.ID() == intermediate {
		t.Fatal("second regeneration should produce a new id")
	}
}

func TestSessionBindTenantClearsPending(t *testing.T) {
	sess := NewEmptySession()

	if sess.BindingState() != BindingUnbound {
		t.Fatalf("state = %v, want BindingUnbound", sess.BindingState())
	}

	sess.SetPendingTenant(kernel.NewTenantID("esc-a"))
	if sess.BindingState() != BindingPending {
		t.Fatalf("state = %v, want BindingPending", sess.BindingState())
	}

	sess.BindTenant(kernel.NewTenantID("esc-a"))
	if sess.BindingState() != BindingBound {
		t.Fatalf("state = %v, want BindingBound", sess.BindingState())
	}
	if !sess.PendingTenant().IsEmpty() {
		t.Fatal("pending selection should not survive the transition to bound")
	}
}

func TestSessionClearDirtyResetsStaleID(t *testing.T) {
	sess := NewSession(kernel.NewSessionID("s1"), map[string]string{"k": "v"})
	sess.Regenerate()

	sess.ClearDirty()
	if sess.IsDirty() {
		t.Fatal("ClearDirty should reset the dirty flag")
	}
	if !sess.StaleID().IsEmpty() {
		t.Fatal("ClearDirty should forget the stale id")
	}
}

func TestSessionMarkDestroyed(t *testing.T) {
	sess := NewSession(kernel.NewSessionID("s1"), map[string]string{"user_id": "u1"})

	sess.MarkDestroyed()
	if !sess.IsDestroyed() {
		t.Fatal("session should report destroyed")
	}
	if !sess.IsDirty() {
		t.Fatal("destruction must be flushed on commit")
	}
}

package studypolicy_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPolicy(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	alice := authz.Caller{AccountID: primitive.NewObjectID(), Nickname: "alice"}
	bob := authz.Caller{AccountID: primitive.NewObjectID(), Nickname: "bob"}
	carol := authz.Caller{AccountID: primitive.NewObjectID(), Nickname: "carol"}
	anon := authz.Caller{}

	draft := study.New("draft", "Draft", "s", "f", alice.AccountID, now)

	open := study.New("open", "Open", "s", "f", alice.AccountID, now)
	if err := study.Publish(&open, now); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := study.StartRecruit(&open, now); err != nil {
		t.Fatalf("StartRecruit failed: %v", err)
	}
	study.AddMember(&open, bob.AccountID)

	tests := []struct {
		name   string
		caller authz.Caller
		s      *models.Study
		manage bool
		join   bool
		leave  bool
		view   bool
	}{
		{"manager on draft", alice, &draft, true, false, false, true},
		{"outsider on draft", carol, &draft, false, false, false, false},
		{"anonymous on draft", anon, &draft, false, false, false, false},
		{"manager on open", alice, &open, true, false, false, true},
		{"member on open", bob, &open, false, false, true, true},
		{"outsider on open", carol, &open, false, true, false, true},
		{"anonymous on open", anon, &open, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := studypolicy.CanManage(tt.caller, tt.s); got != tt.manage {
				t.Errorf("CanManage: got %v, want %v", got, tt.manage)
			}
			if got := studypolicy.CanJoin(tt.caller, tt.s); got != tt.join {
				t.Errorf("CanJoin: got %v, want %v", got, tt.join)
			}
			if got := studypolicy.CanLeave(tt.caller, tt.s); got != tt.leave {
				t.Errorf("CanLeave: got %v, want %v", got, tt.leave)
			}
			if got := studypolicy.CanView(tt.caller, tt.s); got != tt.view {
				t.Errorf("CanView: got %v, want %v", got, tt.view)
			}
		})
	}
}

func TestRequireManage(t *testing.T) {
	owner := primitive.NewObjectID()
	s := study.New("p", "T", "s", "f", owner, time.Now())

	if err := studypolicy.RequireManage(authz.Caller{AccountID: owner}, &s); err != nil {
		t.Errorf("manager: got %v, want nil", err)
	}
	err := studypolicy.RequireManage(authz.Caller{AccountID: primitive.NewObjectID()}, &s)
	if !errors.Is(err, studypolicy.ErrForbidden) {
		t.Errorf("outsider: got %v, want ErrForbidden", err)
	}
}

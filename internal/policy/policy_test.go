package policy

import (
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	const alice, bob = uint(1), uint(2)

	tests := []struct {
		name    string
		policy  Policy
		actor   Actor
		action  Action
		target  Target
		allowed bool
		reason  Reason
	}{
		{"anonymous read public", Policy{}, Anonymous(), ViewProfile, Target{OwnerID: bob}, true, ReasonNone},
		{"anonymous read members only", New(true), Anonymous(), ViewFollowers, Target{OwnerID: bob}, false, ReasonUnauthenticated},
		{"member read members only", New(true), Authenticated(alice), ViewLikes, Target{OwnerID: bob}, true, ReasonNone},
		{"anonymous post", Policy{}, Anonymous(), PostMessage, Target{}, false, ReasonUnauthenticated},
		{"anonymous follow", Policy{}, Anonymous(), Follow, Target{OwnerID: bob}, false, ReasonUnauthenticated},
		{"post own", Policy{}, Authenticated(alice), PostMessage, Target{OwnerID: alice}, true, ReasonNone},
		{"delete own message", Policy{}, Authenticated(alice), DeleteMessage, Target{OwnerID: alice}, true, ReasonNone},
		{"delete other message", Policy{}, Authenticated(bob), DeleteMessage, Target{OwnerID: alice}, false, ReasonNotOwner},
		{"edit other profile", Policy{}, Authenticated(bob), EditProfile, Target{OwnerID: alice}, false, ReasonNotOwner},
		{"delete own profile", Policy{}, Authenticated(alice), DeleteProfile, Target{OwnerID: alice}, true, ReasonNone},
		{"follow other", Policy{}, Authenticated(alice), Follow, Target{OwnerID: bob}, true, ReasonNone},
		{"follow self", Policy{}, Authenticated(alice), Follow, Target{OwnerID: alice}, false, ReasonSelfFollow},
		{"unfollow self is harmless", Policy{}, Authenticated(alice), Unfollow, Target{OwnerID: alice}, true, ReasonNone},
		{"like other message", Policy{}, Authenticated(alice), Like, Target{OwnerID: bob}, true, ReasonNone},
		{"like own message", Policy{}, Authenticated(alice), Like, Target{OwnerID: alice}, false, ReasonOwnMessage},
		{"unlike", Policy{}, Authenticated(alice), Unlike, Target{OwnerID: bob}, true, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.policy.Authorize(tt.actor, tt.action, tt.target)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheck_MapsDenialsToErrors(t *testing.T) {
	p := New(false)

	assert.NoError(t, p.Check(Authenticated(1), Follow, Target{OwnerID: 2}))
	assert.ErrorIs(t, p.Check(Anonymous(), Like, Target{OwnerID: 2}), models.ErrUnauthorized)
	assert.ErrorIs(t, p.Check(Authenticated(2), DeleteMessage, Target{OwnerID: 1}), models.ErrUnauthorized)
	assert.ErrorIs(t, p.Check(Authenticated(1), Follow, Target{OwnerID: 1}), models.ErrInvalidOperation)
	assert.ErrorIs(t, p.Check(Authenticated(1), Like, Target{OwnerID: 1}), models.ErrInvalidOperation)
}

func TestPackageAuthorizeUsesPublicReads(t *testing.T) {
	assert.True(t, Authorize(Anonymous(), ViewMessage, Target{OwnerID: 1}).Allowed)
	assert.False(t, Authorize(Anonymous(), Unlike, Target{OwnerID: 1}).Allowed)
}

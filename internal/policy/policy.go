// Package policy decides whether an actor may perform an action on a target.
// It holds no state and performs no I/O.
package policy

import "warbler/internal/models"

// Action names something an actor can attempt.
type Action string

const (
	ViewProfile   Action = "view_profile"
	ViewFollowing Action = "view_following"
	ViewFollowers Action = "view_followers"
	ViewLikes     Action = "view_likes"
	ViewMessage   Action = "view_message"
	PostMessage   Action = "post_message"
	DeleteMessage Action = "delete_message"
	Follow        Action = "follow"
	Unfollow      Action = "unfollow"
	Like          Action = "like"
	Unlike        Action = "unlike"
	EditProfile   Action = "edit_profile"
	DeleteProfile Action = "delete_profile"
)

// IsRead reports whether the action only reads state.
func (a Action) IsRead() bool {
	switch a {
	case ViewProfile, ViewFollowing, ViewFollowers, ViewLikes, ViewMessage:
		return true
	}
	return false
}

func (a Action) ownerOnly() bool {
	switch a {
	case DeleteMessage, EditProfile, DeleteProfile:
		return true
	}
	return false
}

// Actor is the identity making a request: Anonymous or Authenticated(id).
type Actor struct {
	UserID uint
}

// Anonymous returns an actor with no session.
func Anonymous() Actor { return Actor{} }

// Authenticated returns the actor for a logged-in user.
func Authenticated(userID uint) Actor { return Actor{UserID: userID} }

// IsAuthenticated reports whether the actor carries a user id.
func (a Actor) IsAuthenticated() bool { return a.UserID != 0 }

// Target describes the resource an action applies to. OwnerID is the user
// who owns it: the profile's user, a message's author, or the user being
// followed.
type Target struct {
	OwnerID uint
}

// Reason explains a denial.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "authentication required"
	ReasonNotOwner        Reason = "not the owner of this resource"
	ReasonSelfFollow      Reason = "cannot follow yourself"
	ReasonOwnMessage      Reason = "cannot like your own message"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Policy holds the collaborator's choice of whether reads are members-only.
type Policy struct {
	MembersOnlyReads bool
}

// New returns a Policy.
func New(membersOnlyReads bool) Policy {
	return Policy{MembersOnlyReads: membersOnlyReads}
}

// Authorize decides whether actor may perform action on target.
func (p Policy) Authorize(actor Actor, action Action, target Target) Decision {
	if action.IsRead() {
		if p.MembersOnlyReads && !actor.IsAuthenticated() {
			return deny(ReasonUnauthenticated)
		}
		return allow
	}

	if !actor.IsAuthenticated() {
		return deny(ReasonUnauthenticated)
	}

	switch {
	case action.ownerOnly() && actor.UserID != target.OwnerID:
		return deny(ReasonNotOwner)
	case action == Follow && actor.UserID == target.OwnerID:
		return deny(ReasonSelfFollow)
	case action == Like && actor.UserID == target.OwnerID:
		return deny(ReasonOwnMessage)
	}
	return allow
}

// Check is Authorize returning the matching typed failure on denial:
// Unauthorized for missing identity or ownership, InvalidOperation for
// self-follow and self-like.
func (p Policy) Check(actor Actor, action Action, target Target) error {
	d := p.Authorize(actor, action, target)
	switch d.Reason {
	case ReasonNone:
		return nil
	case ReasonSelfFollow, ReasonOwnMessage:
		return models.NewInvalidOperationError(string(d.Reason))
	default:
		return models.NewUnauthorizedError(string(d.Reason))
	}
}

// Authorize applies the default policy, under which reads are public.
func Authorize(actor Actor, action Action, target Target) Decision {
	return Policy{}.Authorize(actor, action, target)
}

package shop

import (
	"strconv"

	"github.com/stDean/prod-ecom-backend/cache"
)

// Owner identifies whose cart an operation targets: an authenticated user
// or the process-wide guest cart.
type Owner struct {
	userID *int64
}

// Guest returns the anonymous owner. All unauthenticated requests share it.
func Guest() Owner {
	return Owner{}
}

// UserOwner returns the owner for an authenticated user id.
func UserOwner(id int64) Owner {
	return Owner{userID: &id}
}

// ParseOwner parses a transport-supplied owner identifier. Absent input and
// the literal guest token map to the guest owner; anything else must be a
// positive integer user id.
func ParseOwner(raw string) (Owner, error) {
	if raw == "" || raw == cache.GuestOwner {
		return Guest(), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return Owner{}, invalidField("userId", "must be a positive integer")
	}
	return UserOwner(id), nil
}

// IsGuest reports whether this is the anonymous owner.
func (o Owner) IsGuest() bool {
	return o.userID == nil
}

// UserID returns the persistent-store owner column value: nil for guest.
func (o Owner) UserID() *int64 {
	return o.userID
}

// String returns the owner token used in cache keys and logs.
func (o Owner) String() string {
	if o.userID == nil {
		return cache.GuestOwner
	}
	return strconv.FormatInt(*o.userID, 10)
}

// cartKey returns the owner's cache hash key.
func (o Owner) cartKey() string {
	return cache.CartKey(o.String())
}

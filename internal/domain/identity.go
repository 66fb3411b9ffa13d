// File: internal/domain/identity.go
package domain

// UnknownGuestIP is used when no forwarding header carries a client address.
const UnknownGuestIP = "unknown"

// Identity is the resolved actor of a request: an authenticated user or a guest.
// Exactly one of UserID and GuestIP is set.
type Identity struct {
	UserID  string
	GuestIP string
}

func UserIdentity(userID string) Identity { return Identity{UserID: userID} }

func GuestIdentity(ip string) Identity {
	if ip == "" {
		ip = UnknownGuestIP
	}
	return Identity{GuestIP: ip}
}

func (i Identity) IsAuthenticated() bool { return i.UserID != "" }

func (i Identity) IsGuest() bool { return i.UserID == "" && i.GuestIP != "" }

// Key identifies the actor for rate limiting and logging.
func (i Identity) Key() string {
	if i.IsAuthenticated() {
		return "user:" + i.UserID
	}
	return "guest:" + i.GuestIP
}

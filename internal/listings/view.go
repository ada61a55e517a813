package listings

import "github.com/ayotona/rentora/internal/users"

// Redacted returns a copy of p with the contact phone replaced by the
// locked sentinel.
func Redacted(p *Property) *Property {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	cp.ContactPhone = LockedContact
	return &cp
}

// ViewFor renders p for a viewer. Agents and admins always see the
// contact details; regular users only after unlocking. A nil viewer is
// the fully public case and is always redacted.
func ViewFor(p *Property, viewer *users.User, unlocked bool) *Property {
	if viewer != nil {
		if viewer.Role == users.RoleAgent || viewer.Role == users.RoleAdmin {
			return p
		}
		if unlocked {
			return p
		}
	}
	return Redacted(p)
}

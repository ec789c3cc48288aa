package cart

import "github.com/shashiranjanraj/storefront/pkg/session"

// Load reads the cart from the session. A missing or unreadable cart is empty.
func Load(s *session.Session) *Cart {
	var entries []Entry
	if !s.Get(SessionKey, &entries) {
		entries = nil
	}
	return New(entries)
}

// Store writes c back to the session, dropping the key for an empty cart.
// The session still has to be saved.
func Store(s *session.Session, c *Cart) error {
	if c.Empty() {
		s.Delete(SessionKey)
		return nil
	}
	return s.Set(SessionKey, c.Entries)
}

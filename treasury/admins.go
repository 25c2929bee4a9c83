package treasury

import (
	"fmt"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

// MaxAdmins bounds the admin registry.
const MaxAdmins = 15

// AdminRegistry is the bounded set of identities allowed to tune the wheel.
// Slots [0, Count) are live; the rest are zero.
type AdminRegistry struct {
	Admins [MaxAdmins]ledger.Identity `json:"admins"`
	Count  int                        `json:"count"`
}

func (r *AdminRegistry) Contains(id ledger.Identity) bool {
	return r.indexOf(id) >= 0
}

func (r *AdminRegistry) indexOf(id ledger.Identity) int {
	if r == nil || id == "" {
		return -1
	}
	for i := 0; i < r.Count && i < MaxAdmins; i++ {
		if r.Admins[i] == id {
			return i
		}
	}
	return -1
}

// List returns the live admins in slot order.
func (r *AdminRegistry) List() []ledger.Identity {
	if r == nil {
		return nil
	}
	out := make([]ledger.Identity, r.Count)
	copy(out, r.Admins[:r.Count])
	return out
}

// Add registers admin. Only the super-admin may call it.
func (r *AdminRegistry) Add(cfg *Config, caller, admin ledger.Identity) error {
	if err := cfg.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if r.Count >= MaxAdmins {
		return ErrRegistryFull
	}
	if r.Contains(admin) {
		return fmt.Errorf("%w: %s", ErrDuplicateAdmin, admin)
	}
	r.Admins[r.Count] = admin
	r.Count++
	return nil
}

// Delete removes admin and moves the last live slot into the hole.
func (r *AdminRegistry) Delete(cfg *Config, caller, admin ledger.Identity) error {
	if err := cfg.RequireSuperAdmin(caller); err != nil {
		return err
	}
	i := r.indexOf(admin)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, admin)
	}
	last := r.Count - 1
	r.Admins[i] = r.Admins[last]
	r.Admins[last] = ""
	r.Count--
	return nil
}

package core

import "strings"

// Mute-list management. The list is an ordered sequence with
// case-insensitive membership: removal shifts the remaining entries left
// so relative order is preserved. Capacity is MaxClients.

// Mute adds target to the owner's mute list. The target must name a
// currently-registered client other than the owner.
func (r *Registry) Mute(ownerHandle, target string) *CoreError {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.byHandle[ownerHandle]
	if !ok {
		return coreError(ErrCodeNotFound, "client not registered")
	}

	exists := false
	for _, c := range r.byHandle {
		if c.Handle != ownerHandle && strings.EqualFold(c.Name, target) {
			exists = true
			break
		}
	}
	if !exists {
		return coreError(ErrCodeNotFound, "no client named "+target)
	}

	if owner.hasMuted(target) {
		return coreError(ErrCodeAlreadyMuted, "user already muted")
	}
	if len(owner.muted) >= MaxClients {
		return coreError(ErrCodeMuteListFull, "mute list full")
	}
	owner.muted = append(owner.muted, target)
	return nil
}

// MuteAll adds every other currently-registered client's name to the
// owner's mute list. The membership snapshot is taken now; clients that
// join later are unaffected until muted explicitly.
func (r *Registry) MuteAll(ownerHandle string) *CoreError {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.byHandle[ownerHandle]
	if !ok {
		return coreError(ErrCodeNotFound, "client not registered")
	}
	for _, c := range r.byHandle {
		if c.Handle == ownerHandle || owner.hasMuted(c.Name) {
			continue
		}
		if len(owner.muted) >= MaxClients {
			break
		}
		owner.muted = append(owner.muted, c.Name)
	}
	return nil
}

// Unmute removes target from the owner's mute list, shifting the
// remaining entries left.
func (r *Registry) Unmute(ownerHandle, target string) *CoreError {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.byHandle[ownerHandle]
	if !ok {
		return coreError(ErrCodeNotFound, "client not registered")
	}
	for i, muted := range owner.muted {
		if strings.EqualFold(muted, target) {
			owner.muted = append(owner.muted[:i], owner.muted[i+1:]...)
			return nil
		}
	}
	return coreError(ErrCodeNotMuted, "user not in mute list")
}

// UnmuteAll clears the owner's mute list.
func (r *Registry) UnmuteAll(ownerHandle string) *CoreError {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.byHandle[ownerHandle]
	if !ok {
		return coreError(ErrCodeNotFound, "client not registered")
	}
	owner.muted = owner.muted[:0]
	return nil
}

// MutedNames returns a copy of the owner's mute list in order.
func (r *Registry) MutedNames(ownerHandle string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.byHandle[ownerHandle]
	if !ok {
		return nil
	}
	out := make([]string, len(owner.muted))
	copy(out, owner.muted)
	return out
}

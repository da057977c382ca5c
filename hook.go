package hookpoint

// Hook represents a handle to a registered callback. It provides a way to
// unregister the callback from its hook point without keeping the point
// name and action around.
//
// Hook handles are returned by Add and should be stored if you need to
// unregister the callback later.
//
// Thread Safety:
// Hook methods are safe for concurrent use, but each handle should only be
// used to unregister once. Further calls to Unhook on the same handle
// return ErrAlreadyUnhooked.
//
// Example:
//
//	hook, err := service.Add("session.opened", action)
//	if err != nil {
//	    return err
//	}
//
//	// Later, unregister the callback
//	if err := hook.Unhook(); err != nil {
//	    log.Printf("failed to unhook: %v", err)
//	}
type Hook struct {
	// unhook performs the actual unregistration. It's set during
	// registration and cleared after the first Unhook call.
	unhook func() error
}

// Unhook removes this hook's callback from its hook point.
//
// After calling Unhook, this handle becomes invalid and subsequent calls
// return ErrAlreadyUnhooked. The removal is applied by the registrar, so it
// is atomic with respect to other registrations: dispatch observes either
// the list with the callback or the list without it.
//
// Returns:
//   - nil: callback successfully removed (or already gone; deletion is
//     idempotent)
//   - ErrAlreadyUnhooked: this handle was already used
//   - ErrServiceClosed: the service was closed before the removal landed
func (h *Hook) Unhook() error {
	if h.unhook == nil {
		return ErrAlreadyUnhooked
	}
	err := h.unhook()
	h.unhook = nil
	return err
}

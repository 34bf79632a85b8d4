package domain

// Backend responses spell profile fields several ways depending on the
// endpoint (login vs. profile fetch vs. roster listing). Normalize folds any
// of those shapes into the one canonical User. First matching alias wins.
var (
	idAliases       = []string{"id", "_id", "user_id", "ID"}
	usernameAliases = []string{"username", "user_name", "userName", "login"}
	emailAliases    = []string{"email", "mail", "Email"}
	fullNameAliases = []string{"full_name", "name", "fullName", "FullName"}
	roleAliases     = []string{"role", "Role"}
	permAliases     = []string{"permissions", "perms", "Permissions"}
)

// Normalize maps a raw backend profile object into a canonical User.
// It is pure and idempotent: feeding back the map form of a canonical User
// returns a field-for-field equal record. Missing string fields default to
// "", missing role/permissions stay absent. A nil input yields nil; the
// function never panics on unexpected value types.
func Normalize(raw map[string]any) *User {
	if raw == nil {
		return nil
	}

	u := &User{
		ID:       firstString(raw, idAliases),
		Username: firstString(raw, usernameAliases),
		Email:    firstString(raw, emailAliases),
		FullName: firstString(raw, fullNameAliases),
	}

	if role := firstString(raw, roleAliases); role != "" {
		u.Role = Role(role)
	}

	for _, key := range permAliases {
		if v, ok := raw[key]; ok {
			if perms := coercePermissions(v); perms != nil {
				u.Permissions = perms
				break
			}
		}
	}

	return u
}

func firstString(raw map[string]any, aliases []string) string {
	for _, key := range aliases {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// coercePermissions accepts the shapes JSON decoding and in-process callers
// produce for a permission object. Keys outside the fixed capability set are
// dropped; non-boolean values count as denied and are omitted, so absence
// and false stay equivalent.
func coercePermissions(v any) Permissions {
	out := Permissions{}
	switch m := v.(type) {
	case Permissions:
		for cap, granted := range m {
			if ValidCapability(cap) {
				out[cap] = granted
			}
		}
	case map[Capability]bool:
		for cap, granted := range m {
			if ValidCapability(cap) {
				out[cap] = granted
			}
		}
	case map[string]bool:
		for name, granted := range m {
			if cap := Capability(name); ValidCapability(cap) {
				out[cap] = granted
			}
		}
	case map[string]any:
		for name, val := range m {
			cap := Capability(name)
			if !ValidCapability(cap) {
				continue
			}
			if granted, ok := val.(bool); ok {
				out[cap] = granted
			}
		}
	default:
		return nil
	}
	return out
}

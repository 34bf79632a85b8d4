package domain

// Role is the coarse access tier of a dashboard user.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Capability names one protected feature area of the dashboard.
type Capability string

const (
	CapOrders   Capability = "orders"
	CapProducts Capability = "products"
	CapUsers    Capability = "users"
	CapReports  Capability = "reports"
)

// Capabilities is the fixed set of gated feature areas. A permission map
// never carries keys outside this set; a missing key means denied.
var Capabilities = []Capability{CapOrders, CapProducts, CapUsers, CapReports}

// Permissions maps a capability to whether the holder may use it.
type Permissions map[Capability]bool

// User is the canonical profile of an authenticated dashboard actor.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Role        Role        `json:"role,omitempty"`
	Permissions Permissions `json:"permissions,omitempty"`
}

// Allows reports whether the user holds the given capability. A nil user or
// a missing/false permission key denies; only an explicit true grants.
func (u *User) Allows(cap Capability) bool {
	if u == nil {
		return false
	}
	return u.Permissions[cap]
}

// Clone returns an independent copy so that callers holding a read-only view
// never alias the cached record's permission map.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Permissions != nil {
		clone.Permissions = make(Permissions, len(u.Permissions))
		for k, v := range u.Permissions {
			clone.Permissions[k] = v
		}
	}
	return &clone
}

// ValidRole reports whether r is one of the known role values.
func ValidRole(r Role) bool {
	return r == RoleStaff || r == RoleAdmin
}

// ValidCapability reports whether c belongs to the fixed capability set.
func ValidCapability(c Capability) bool {
	for _, known := range Capabilities {
		if c == known {
			return true
		}
	}
	return false
}

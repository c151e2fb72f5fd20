package permission

// The permission vocabulary is closed and case-sensitive: these names are
// part of the persisted contract and must match the permissions table.
const (
	AddVehicle         = "ADD_VEHICLE"
	EditVehicle        = "EDIT_VEHICLE"
	ManageUsers        = "MANAGE_USERS"
	RemoveVehicle      = "REMOVE_VEHICLE"
	ResetPasswords     = "RESET_PASSWORDS"
	SearchVehicles     = "SEARCH_VEHICLES"
	SellVehicle        = "SELL_VEHICLE"
	ViewDealershipInfo = "VIEW_DEALERSHIP_INFO"
	ViewSalesHistory   = "VIEW_SALES_HISTORY"
)

// Vocabulary returns the full closed set of permission names.
func Vocabulary() []string {
	return []string{
		AddVehicle,
		EditVehicle,
		ManageUsers,
		RemoveVehicle,
		ResetPasswords,
		SearchVehicles,
		SellVehicle,
		ViewDealershipInfo,
		ViewSalesHistory,
	}
}

// Known reports whether name belongs to the vocabulary.
func Known(name string) bool {
	for _, p := range Vocabulary() {
		if p == name {
			return true
		}
	}
	return false
}

// Set is a point-in-time snapshot of one user's permissions. Names
// absent from the store fall back to the set's default, which differs
// per caller: an Admin-facing view defaults open, everything else
// defaults closed.
type Set struct {
	grants     map[string]bool
	defaultVal bool
}

func NewSet(grants map[string]bool, defaultVal bool) Set {
	if grants == nil {
		grants = make(map[string]bool)
	}
	return Set{grants: grants, defaultVal: defaultVal}
}

// Has reports the effective state of a permission.
func (s Set) Has(name string) bool {
	if enabled, ok := s.grants[name]; ok {
		return enabled
	}
	return s.defaultVal
}

// Enabled returns the enabled permission names, for display.
func (s Set) Enabled() []string {
	var names []string
	for _, name := range Vocabulary() {
		if s.Has(name) {
			names = append(names, name)
		}
	}
	return names
}

// Map returns the effective state over the full vocabulary.
func (s Set) Map() map[string]bool {
	out := make(map[string]bool, len(Vocabulary()))
	for _, name := range Vocabulary() {
		out[name] = s.Has(name)
	}
	return out
}

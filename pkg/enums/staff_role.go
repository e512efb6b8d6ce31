package enums

// StaffRole scopes what a signed-in staff member may do.
type StaffRole string

const (
	StaffRoleWaiter  StaffRole = "waiter"
	StaffRoleKitchen StaffRole = "kitchen"
	StaffRoleCashier StaffRole = "cashier"
	StaffRoleManager StaffRole = "manager"
)

func (r StaffRole) IsValid() bool {
	switch r {
	case StaffRoleWaiter, StaffRoleKitchen, StaffRoleCashier, StaffRoleManager:
		return true
	}
	return false
}

// CanDispatch reports whether the role may send order lines to the kitchen.
func (r StaffRole) CanDispatch() bool {
	switch r {
	case StaffRoleWaiter, StaffRoleManager:
		return true
	}
	return false
}

// CanUpdateKitchen reports whether the role may move kitchen item statuses.
func (r StaffRole) CanUpdateKitchen() bool {
	switch r {
	case StaffRoleKitchen, StaffRoleManager:
		return true
	}
	return false
}

// CanBill reports whether the role may settle or finalize orders.
func (r StaffRole) CanBill() bool {
	switch r {
	case StaffRoleCashier, StaffRoleManager:
		return true
	}
	return false
}

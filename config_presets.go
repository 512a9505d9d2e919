package goGuard

import "github.com/MrEthical07/goGuard/permission"

// CollegeAdmissionConfig returns the preset for the college admission dashboard.
func CollegeAdmissionConfig() Config {
	cfg := defaultConfig()
	cfg.Session.KeyPrefix = "admission."
	cfg.Roles = RolesConfig{
		Roles: []permission.Role{"SUPER_ADMIN", "ADMIN", "OFFICER", "STUDENT", "VIEWER"},
		Permissions: []string{
			"USER_MANAGE",
			"STUDENT_VIEW", "STUDENT_MANAGE",
			"APPLICATION_VIEW", "APPLICATION_REVIEW", "APPLICATION_APPROVE",
			"COURSE_VIEW", "COURSE_MANAGE",
			"REPORT_VIEW",
		},
		Aliases: map[string]permission.Role{
			"ADMISSION_OFFICER": "OFFICER",
			"SUPERADMIN":        "SUPER_ADMIN",
			"APPLICANT":         "STUDENT",
		},
		DefaultRole: "VIEWER",
		DemoPermissions: permission.Table{
			"VIEWER":  {"COURSE_VIEW"},
			"STUDENT": {"COURSE_VIEW", "APPLICATION_VIEW"},
		},
	}
	return cfg
}

// GroceryConfig returns the preset for the grocery delivery marketplace.
func GroceryConfig() Config {
	cfg := defaultConfig()
	cfg.Session.KeyPrefix = "grocery."
	cfg.Roles = RolesConfig{
		Roles: []permission.Role{"ADMIN", "SELLER", "CUSTOMER", "DELIVERY_PARTNER"},
		Permissions: []string{
			"USER_MANAGE",
			"PRODUCT_VIEW", "PRODUCT_CREATE", "PRODUCT_UPDATE", "PRODUCT_DELETE",
			"ORDER_VIEW", "ORDER_CREATE", "ORDER_UPDATE",
			"DELIVERY_VIEW", "DELIVERY_UPDATE",
		},
		Aliases: map[string]permission.Role{
			"MANAGER":  "SELLER",
			"STAFF":    "SELLER",
			"VENDOR":   "SELLER",
			"DRIVER":   "DELIVERY_PARTNER",
			"DELIVERY": "DELIVERY_PARTNER",
			"USER":     "CUSTOMER",
		},
		DefaultRole: "CUSTOMER",
		DemoPermissions: permission.Table{
			"CUSTOMER": {"PRODUCT_VIEW", "ORDER_VIEW", "ORDER_CREATE"},
		},
	}
	return cfg
}

// LibraryConfig returns the preset for the library management dashboard.
func LibraryConfig() Config {
	cfg := defaultConfig()
	cfg.Session.KeyPrefix = "library."
	cfg.Roles = RolesConfig{
		Roles: []permission.Role{"ADMIN", "LIBRARIAN", "MEMBER"},
		Permissions: []string{
			"USER_MANAGE",
			"BOOK_VIEW", "BOOK_MANAGE",
			"LOAN_VIEW", "LOAN_MANAGE",
			"FINE_MANAGE",
		},
		Aliases: map[string]permission.Role{
			"STAFF":  "LIBRARIAN",
			"READER": "MEMBER",
			"USER":   "MEMBER",
		},
		DefaultRole: "MEMBER",
		DemoPermissions: permission.Table{
			"MEMBER": {"BOOK_VIEW", "LOAN_VIEW"},
		},
	}
	return cfg
}

// BudgetConfig returns the preset for the personal budget tracker.
func BudgetConfig() Config {
	cfg := defaultConfig()
	cfg.Session.KeyPrefix = "budget."
	cfg.Roles = RolesConfig{
		Roles: []permission.Role{"ADMIN", "USER"},
		Permissions: []string{
			"USER_MANAGE",
			"BUDGET_VIEW", "BUDGET_MANAGE",
			"TRANSACTION_VIEW", "TRANSACTION_MANAGE",
			"REPORT_VIEW",
		},
		Aliases: map[string]permission.Role{
			"MEMBER": "USER",
			"OWNER":  "USER",
		},
		DefaultRole: "USER",
		DemoPermissions: permission.Table{
			"USER": {"BUDGET_VIEW", "BUDGET_MANAGE", "TRANSACTION_VIEW", "TRANSACTION_MANAGE"},
		},
	}
	return cfg
}

// Preset returns the named application preset: "admission", "grocery", "library" or
// "budget".
func Preset(name string) (Config, bool) {
	switch name {
	case "admission", "college":
		return CollegeAdmissionConfig(), true
	case "grocery":
		return GroceryConfig(), true
	case "library":
		return LibraryConfig(), true
	case "budget":
		return BudgetConfig(), true
	}
	return Config{}, false
}

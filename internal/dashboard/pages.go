package dashboard

import (
	"github.com/MrEthical07/goGuard/guard"
)

// Page is one guarded dashboard route.
type Page struct {
	Path        string
	Title       string
	Requirement guard.Requirement
}

// PresetPages returns the navigation for a goGuard preset name. Unknown names get a
// single home page.
func PresetPages(preset string) []Page {
	home := Page{Path: "/", Title: "Home"}

	switch preset {
	case "admission", "college":
		return []Page{
			home,
			{Path: "/applications", Title: "Applications", Requirement: guard.Permission("APPLICATION_VIEW")},
			{Path: "/applications/review", Title: "Review queue", Requirement: guard.AnyOf("APPLICATION_REVIEW", "APPLICATION_APPROVE")},
			{Path: "/students", Title: "Students", Requirement: guard.Permission("STUDENT_VIEW")},
			{Path: "/courses", Title: "Courses", Requirement: guard.Permission("COURSE_VIEW")},
			{Path: "/reports", Title: "Reports", Requirement: guard.Permission("REPORT_VIEW")},
			{Path: "/users", Title: "Users", Requirement: guard.Roles("SUPER_ADMIN", "ADMIN")},
		}
	case "grocery":
		return []Page{
			home,
			{Path: "/products", Title: "Products", Requirement: guard.Permission("PRODUCT_VIEW")},
			{Path: "/products/manage", Title: "Manage products", Requirement: guard.AllOf("PRODUCT_CREATE", "PRODUCT_UPDATE")},
			{Path: "/orders", Title: "Orders", Requirement: guard.Permission("ORDER_VIEW")},
			{Path: "/deliveries", Title: "Deliveries", Requirement: guard.Roles("DELIVERY_PARTNER", "ADMIN")},
			{Path: "/users", Title: "Users", Requirement: guard.Requirement{Role: "ADMIN", Permission: "USER_MANAGE"}},
		}
	case "library":
		return []Page{
			home,
			{Path: "/books", Title: "Books", Requirement: guard.Permission("BOOK_VIEW")},
			{Path: "/loans", Title: "Loans", Requirement: guard.Permission("LOAN_VIEW")},
			{Path: "/fines", Title: "Fines", Requirement: guard.Permission("FINE_MANAGE")},
			{Path: "/users", Title: "Users", Requirement: guard.Roles("ADMIN")},
		}
	case "budget":
		return []Page{
			home,
			{Path: "/budgets", Title: "Budgets", Requirement: guard.Permission("BUDGET_VIEW")},
			{Path: "/transactions", Title: "Transactions", Requirement: guard.Permission("TRANSACTION_VIEW")},
			{Path: "/reports", Title: "Reports", Requirement: guard.Permission("REPORT_VIEW")},
			{Path: "/users", Title: "Users", Requirement: guard.Roles("ADMIN")},
		}
	}
	return []Page{home}
}

package domain

// TicketCategory is the fixed classification set for help desk tickets.
type TicketCategory string

const (
	CategoryLeave        TicketCategory = "LEAVE"
	CategoryAttendance   TicketCategory = "ATTENDANCE"
	CategoryOnboarding   TicketCategory = "ONBOARDING"
	CategoryPayroll      TicketCategory = "PAYROLL"
	CategoryBenefits     TicketCategory = "BENEFITS"
	CategoryPolicy       TicketCategory = "POLICY"
	CategorySystemAccess TicketCategory = "SYSTEM_ACCESS"
	CategoryGrievance    TicketCategory = "GRIEVANCE"
	CategoryHarassment   TicketCategory = "HARASSMENT"
	CategoryOther        TicketCategory = "OTHER"
)

var validCategories = map[TicketCategory]struct{}{
	CategoryLeave:        {},
	CategoryAttendance:   {},
	CategoryOnboarding:   {},
	CategoryPayroll:      {},
	CategoryBenefits:     {},
	CategoryPolicy:       {},
	CategorySystemAccess: {},
	CategoryGrievance:    {},
	CategoryHarassment:   {},
	CategoryOther:        {},
}

// IsValidCategory reports whether the category is part of the fixed set.
func IsValidCategory(category TicketCategory) bool {
	_, ok := validCategories[category]
	return ok
}

// confidentialCategories are hidden from the lowest HR tier regardless of routing.
var confidentialCategories = map[TicketCategory]struct{}{
	CategoryGrievance:  {},
	CategoryHarassment: {},
}

// IsConfidentialCategory reports whether tickets of this category are
// confidential from creation.
func IsConfidentialCategory(category TicketCategory) bool {
	_, ok := confidentialCategories[category]
	return ok
}

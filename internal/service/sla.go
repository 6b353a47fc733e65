package service

import (
	"strings"
	"time"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

type slaHours struct {
	Response   int
	Resolution int
}

// prioritySLA is the default response/resolution matrix in hours.
var prioritySLA = map[domain.TicketPriority]slaHours{
	domain.TicketPriorityCritical: {Response: 1, Resolution: 4},
	domain.TicketPriorityHigh:     {Response: 4, Resolution: 24},
	domain.TicketPriorityMedium:   {Response: 8, Resolution: 48},
	domain.TicketPriorityLow:      {Response: 24, Resolution: 72},
}

// categorySLA overrides the priority default when present. Grievance-class
// categories demand a fast first touch regardless of priority.
var categorySLA = map[domain.TicketCategory]slaHours{
	domain.CategoryGrievance:  {Response: 1, Resolution: 24},
	domain.CategoryHarassment: {Response: 1, Resolution: 24},
	domain.CategoryPayroll:    {Response: 4, Resolution: 24},
}

// systemAccessSLA splits the system-access override by subcategory: lockouts
// block work and get the tighter resolution window.
var systemAccessSLA = map[string]slaHours{
	"ACCOUNT_LOCKED": {Response: 2, Resolution: 8},
}

const systemAccessDefaultResolution = 12

// ComputeSLA derives ticket deadlines from priority, category and the
// creation (or recomputation base) timestamp.
func ComputeSLA(priority domain.TicketPriority, category domain.TicketCategory, subcategory string, createdAt time.Time) domain.SLAInfo {
	hours, ok := prioritySLA[priority]
	if !ok {
		hours = prioritySLA[domain.TicketPriorityMedium]
	}
	if override, ok := categorySLA[category]; ok {
		hours = override
	}
	if category == domain.CategorySystemAccess {
		key := strings.ToUpper(strings.TrimSpace(subcategory))
		if override, ok := systemAccessSLA[key]; ok {
			hours = override
		} else {
			hours = slaHours{Response: 2, Resolution: systemAccessDefaultResolution}
		}
	}
	return domain.SLAInfo{
		ResponseHours:      hours.Response,
		ResolutionHours:    hours.Resolution,
		ResponseDeadline:   createdAt.Add(time.Duration(hours.Response) * time.Hour),
		ResolutionDeadline: createdAt.Add(time.Duration(hours.Resolution) * time.Hour),
	}
}

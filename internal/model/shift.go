package model

// Label identifies the role/shift an Assignment belongs to.
type Label string

const (
	LabelPostCall    Label = "PostCall"
	LabelPostHoliday Label = "PostHoliday"
	LabelPostLate    Label = "PostLate"
	LabelPreCall     Label = "PreCall"
	LabelPreHoliday  Label = "PreHoliday"
	LabelUnassigned  Label = "Unassigned"
	LabelOnLate      Label = "OnLate"
	LabelOnCall      Label = "OnCall"
	LabelAdmin       Label = "Admin"
	// LabelAssigned marks a formerly-Unassigned physician once the solver
	// has chosen a concrete peel position for them.
	LabelAssigned Label = "Assigned"
)

// TurnOrder is the canonical ordering of label groups on a workday: smaller
// index leaves earlier. PreHoliday is a null-only transition role tracked
// alongside PreCall and does not get its own peel slot in TURN_ORDER
// (mirrors the source, where Pre-Holiday never appears in TURN_ORDER).
var TurnOrder = []Label{
	LabelPostCall,
	LabelPostHoliday,
	LabelPostLate,
	LabelPreCall,
	LabelUnassigned,
	LabelOnLate,
	LabelOnCall,
	LabelAdmin,
}

// AdminPoints is the fixed point value every admin slot carries regardless
// of where in the week it falls.
const AdminPoints = 8

// DayKind is the classification of a calendar day within a derived week.
type DayKind string

const (
	Workday DayKind = "Workday"
	Weekend DayKind = "Weekend"
)

// Assignment ties a physician to a point value and a shift label.
type Assignment struct {
	Physician string
	Points    Points
	Label     Label
}

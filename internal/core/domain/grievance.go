package domain

// GrievanceStatus indicates where a grievance sits in its lifecycle.
type GrievanceStatus string

const (
	StatusSubmitted  GrievanceStatus = "Submitted"
	StatusAssigned   GrievanceStatus = "Assigned"
	StatusInProgress GrievanceStatus = "In Progress"
	StatusResolved   GrievanceStatus = "Resolved"
	StatusClosed     GrievanceStatus = "Closed"
)

// legalTransitions is the single source of truth for the grievance state
// graph. Submitted -> Assigned is deliberately absent: that edge belongs to
// the assignment coordinator, which pairs it with the worker binding.
var legalTransitions = map[GrievanceStatus][]GrievanceStatus{
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {StatusClosed},
}

// CanTransition reports whether moving from s to next is a legal workflow
// edge. Assignment is excluded; see legalTransitions.
func (s GrievanceStatus) CanTransition(next GrievanceStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further workflow transitions exist from s.
func (s GrievanceStatus) IsTerminal() bool {
	return len(legalTransitions[s]) == 0 && s != StatusSubmitted
}

// GrievancePriority is the reporter-declared urgency of a grievance.
type GrievancePriority string

const (
	PriorityLow    GrievancePriority = "Low"
	PriorityMedium GrievancePriority = "Medium"
	PriorityHigh   GrievancePriority = "High"
)

// GrievanceCategory classifies the civic concern being reported.
type GrievanceCategory string

const (
	CategoryRoad        GrievanceCategory = "Road"
	CategoryWater       GrievanceCategory = "Water"
	CategorySanitation  GrievanceCategory = "Sanitation"
	CategoryElectricity GrievanceCategory = "Electricity"
	CategoryOther       GrievanceCategory = "Other"
)

// Grievance represents a citizen-reported civic issue tracked through a
// fixed lifecycle. AssignedWorkerID is nil until the assignment coordinator
// binds exactly one worker to it.
type Grievance struct {
	GrievanceID      string            `json:"grievanceID"` // Primary Key (UUID)
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Category         GrievanceCategory `json:"category"`
	Priority         GrievancePriority `json:"priority"`
	Status           GrievanceStatus   `json:"status"`
	AssignedWorkerID *string           `json:"assignedWorkerID,omitempty"` // UserID of the bound worker
	ReporterID       string            `json:"reporterID"`
	IsPublic         bool              `json:"isPublic"`
	Upvotes          []string          `json:"upvotes"`   // UserIDs, mutually exclusive with Downvotes
	Downvotes        []string          `json:"downvotes"` // UserIDs
	AuditFields
}

// VoteDirection is the direction of a community vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ToggleVote computes the new vote sets after voter casts a vote. Voting the
// same direction twice removes the vote; voting the opposite direction moves
// the voter across, so a voter is never in both sets. Callers must apply both
// returned sets in a single update.
func ToggleVote(upvotes, downvotes []string, voterID string, direction VoteDirection) (newUp, newDown []string) {
	target, opposite := upvotes, downvotes
	if direction == VoteDown {
		target, opposite = downvotes, upvotes
	}

	if containsID(target, voterID) {
		target = removeID(target, voterID)
	} else {
		target = append(append([]string{}, target...), voterID)
		opposite = removeID(opposite, voterID)
	}

	if direction == VoteDown {
		return opposite, target
	}
	return target, opposite
}

// HasVoted reports which set, if any, the voter currently occupies.
func (g *Grievance) HasVoted(voterID string) (up bool, down bool) {
	return containsID(g.Upvotes, voterID), containsID(g.Downvotes, voterID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

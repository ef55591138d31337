package eligibility

import "github.com/panuwat93/smpk-duty-roster/pkg/core/model"

// Candidates returns the team members the requester may trade shifts with.
// Nurses trade only with other nurses; assistants and patient care aides
// trade freely within the assistant category. The requester is never a
// candidate of their own request, and a requester with an unrecognised role
// gets no candidates at all.
func Candidates(requester model.TeamMember, members []model.TeamMember) []model.TeamMember {
	candidates := make([]model.TeamMember, 0, len(members))
	for _, member := range members {
		if member.ID == requester.ID {
			continue
		}
		if Eligible(requester.Role, member.Role) {
			candidates = append(candidates, member)
		}
	}
	return candidates
}

// Eligible reports whether a member with role a may trade with one of role b.
func Eligible(a, b model.Role) bool {
	switch {
	case a.IsNurseClass():
		return b.IsNurseClass()
	case a.IsAssistantClass():
		return b.IsAssistantClass()
	default:
		return false
	}
}

package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

func member(id string, role model.Role) model.TeamMember {
	return model.TeamMember{ID: id, FirstName: "Test", LastName: id, Role: role, Department: "ICU"}
}

func TestCandidates_NurseSeesOnlyNurses(t *testing.T) {
	members := []model.TeamMember{
		member("n1", model.RoleNurse),
		member("n2", model.RoleNurse),
		member("a1", model.RoleAssistant),
		member("p1", model.RoleAide),
	}

	candidates := Candidates(members[0], members)

	assert.Len(t, candidates, 1)
	assert.Equal(t, "n2", candidates[0].ID)
}

func TestCandidates_AssistantClassTradesFreely(t *testing.T) {
	members := []model.TeamMember{
		member("n1", model.RoleNurse),
		member("a1", model.RoleAssistant),
		member("a2", model.RoleAssistant),
		member("p1", model.RoleAide),
	}

	// An assistant sees the other assistant and the aide, never the nurse
	candidates := Candidates(members[1], members)
	ids := idsOf(candidates)
	assert.ElementsMatch(t, []string{"a2", "p1"}, ids)

	// An aide sees both assistants
	candidates = Candidates(members[3], members)
	ids = idsOf(candidates)
	assert.ElementsMatch(t, []string{"a1", "a2"}, ids)
}

func TestCandidates_ExcludesRequester(t *testing.T) {
	members := []model.TeamMember{member("n1", model.RoleNurse)}

	candidates := Candidates(members[0], members)

	assert.Empty(t, candidates)
}

func TestCandidates_UnknownRoleYieldsNoCandidates(t *testing.T) {
	members := []model.TeamMember{
		member("x1", model.Role("Clerk")),
		member("n1", model.RoleNurse),
		member("a1", model.RoleAssistant),
	}

	candidates := Candidates(members[0], members)

	assert.Empty(t, candidates)
}

func TestCandidates_Symmetry(t *testing.T) {
	members := []model.TeamMember{
		member("n1", model.RoleNurse),
		member("n2", model.RoleNurse),
		member("a1", model.RoleAssistant),
		member("p1", model.RoleAide),
	}

	// Candidacy is symmetric: y in Candidates(x) iff x in Candidates(y)
	for _, x := range members {
		for _, y := range members {
			if x.ID == y.ID {
				continue
			}
			xSeesY := contains(Candidates(x, members), y.ID)
			ySeesX := contains(Candidates(y, members), x.ID)
			assert.Equal(t, xSeesY, ySeesX,
				"asymmetric eligibility between %s (%s) and %s (%s)", x.ID, x.Role, y.ID, y.Role)
		}
	}
}

func TestCandidates_EmptyTeam(t *testing.T) {
	candidates := Candidates(member("n1", model.RoleNurse), nil)
	assert.Empty(t, candidates)
}

func idsOf(members []model.TeamMember) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func contains(members []model.TeamMember, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

package enums

type DanceRole string

const (
	DanceRoleLead   DanceRole = "lead"
	DanceRoleFollow DanceRole = "follow"
	DanceRoleBoth   DanceRole = "both"
)

func ValidDanceRole(value string) bool {
	switch DanceRole(value) {
	case DanceRoleLead, DanceRoleFollow, DanceRoleBoth:
		return true
	}
	return false
}

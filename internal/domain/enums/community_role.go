package enums

type CommunityRole string

const (
	CommunityRoleDancer     CommunityRole = "dancer"
	CommunityRoleInstructor CommunityRole = "instructor"
	CommunityRoleOrganizer  CommunityRole = "organizer"
	CommunityRoleAdmin      CommunityRole = "admin"
)

func RequestableRole(value string) bool {
	switch CommunityRole(value) {
	case CommunityRoleInstructor, CommunityRoleOrganizer:
		return true
	}
	return false
}

package sessions

import "github.com/MarcoPoloResearchLab/bookfriends/internal/groups"

// UserProfile is a member's identity inside one group. Names are not unique.
type UserProfile struct {
	GroupID      string `json:"groupId"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
	Password     string `json:"password,omitempty"`
}

// Session pairs a group with the member using it.
type Session struct {
	Group groups.Group `json:"group"`
	User  UserProfile  `json:"user"`
}

// NewMembership binds profile to group, stamping the profile's GroupID with the group code.
func NewMembership(group groups.Group, profile UserProfile) Session {
	profile.GroupID = group.Code
	return Session{Group: group, User: profile}
}

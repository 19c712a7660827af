package groups

// DefaultMaxMembers is the member limit suggested for a new group. It is descriptive only.
const DefaultMaxMembers = 5

// Group is a reading circle, looked up by its short code.
type Group struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	LeaderName  string `json:"leaderName"`
	MaxMembers  int    `json:"maxMembers"`
	Description string `json:"description"`
	Password    string `json:"password,omitempty"`
}

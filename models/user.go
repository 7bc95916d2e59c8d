package models

// WebsiteListing is a single website-access record on a ServerUser
type WebsiteListing struct {
	OrgCode     string `json:"orgCode"`
	OrgName     string `json:"orgName"`
	WebsiteName string `json:"websiteName"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	GUID        string `json:"guid"`
	WebsiteID   int64  `json:"websiteID"`
	IsCurrent   bool   `json:"isCurrent"`
	ManagerURL  string `json:"managerUrl"`
	IsOwner     bool   `json:"isOwner"`
	IsDormant   bool   `json:"isDormant"`
}

// ServerUser is the management API's view of the signed in user.
// It is consumed read-only.
type ServerUser struct {
	UserID         int64            `json:"userID"`
	UserName       string           `json:"userName"`
	EmailAddress   string           `json:"emailAddress"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	IsInternalUser bool             `json:"isInternalUser"`
	IsSuspended    bool             `json:"isSuspended"`
	AdminAccess    bool             `json:"adminAccess"`
	CurrentWebsite string           `json:"currentWebsite"`
	JobRole        string           `json:"jobRole"`
	WebsiteAccess  []WebsiteListing `json:"websiteAccess"`
}

// DisplayName returns the best available label for the user
func (u *ServerUser) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.FirstName != "" || u.LastName != "":
		if u.FirstName != "" && u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName + u.LastName
	case u.UserName != "":
		return u.UserName
	default:
		return u.EmailAddress
	}
}

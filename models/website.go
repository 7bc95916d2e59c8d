package models

import "fmt"

// WebsiteAccess is a website the signed in user may select
type WebsiteAccess struct {
	WebsiteGUID        string `json:"websiteGuid"`
	WebsiteName        string `json:"websiteName"`
	WebsiteDescription string `json:"websiteDescription"`
}

// LocaleInfo is a locale of the selected website
type LocaleInfo struct {
	LocaleCode string `json:"localeCode"`
	LocaleID   int64  `json:"localeID"`
	LocaleName string `json:"localeName"`
	IsDefault  bool   `json:"isDefault"`
	IsEnabled  bool   `json:"isEnabled"`
}

// WebsitesFromUser maps the user's website-access records.
// Missing guids get an index based placeholder, so guids are not
// guaranteed to be unique.
func WebsitesFromUser(user *ServerUser) []WebsiteAccess {
	if user == nil {
		return []WebsiteAccess{}
	}

	websites := make([]WebsiteAccess, 0, len(user.WebsiteAccess))
	for i, access := range user.WebsiteAccess {
		fallback := fmt.Sprintf("Website %d", i+1)

		guid := access.GUID
		if guid == "" {
			guid = fmt.Sprintf("website-%d", i)
		}

		websites = append(websites, WebsiteAccess{
			WebsiteGUID:        guid,
			WebsiteName:        firstNonEmpty(access.DisplayName, access.WebsiteName, access.GUID, fallback),
			WebsiteDescription: firstNonEmpty(access.Description, access.WebsiteName, access.GUID, fallback),
		})
	}
	return websites
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

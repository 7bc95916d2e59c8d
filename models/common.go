package models

// Flash message kinds, used as CSS class suffixes
const (
	FlashInfo  = "info"
	FlashError = "error"
)

// FlashMessage is a one-off notice shown above a page
type FlashMessage struct {
	Type    string
	Message string
}

// PageData is what every page template receives
type PageData struct {
	Title        string
	FlashMessage *FlashMessage
	Data         any
}

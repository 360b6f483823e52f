// Package entity defines data structures shared by the web layer of school-cms.
package entity

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// FacilityCard is one tile in the facilities section of the public site.
type FacilityCard struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Icon        string `json:"icon" form:"icon"`
	ImageURL    string `json:"imageUrl" form:"imageUrl"`
}

// SocialLinks maps a platform name (facebook, instagram, ...) to a profile URL.
type SocialLinks map[string]string

// GradientConfig describes the CSS gradient of one public site section.
type GradientConfig struct {
	From      string `json:"from" form:"from"`
	Via       string `json:"via" form:"via"`
	To        string `json:"to" form:"to"`
	Direction string `json:"direction" form:"direction"`
}

// ContactForm is a contact submission from the public site. All fields are
// required; Email must parse as an address.
type ContactForm struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Subject string `json:"subject" form:"subject" binding:"required"`
	Message string `json:"message" form:"message" binding:"required"`
}

// ContactResult is returned by the contact dispatcher. URL is set for the
// whatsapp action; the client navigates to it itself.
type ContactResult struct {
	Action string `json:"action"`
	URL    string `json:"url,omitempty"`
}

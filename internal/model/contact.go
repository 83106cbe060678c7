package model

// Contact is one entry in a user's contact list.
//
// OWNERSHIP:
// UserID points at User.ID but nothing enforces it. The persisted "contacts"
// key holds every user's contacts in one array, so every read must filter by
// UserID. ID and UserID never change after creation; only Name and
// PhoneNumber are editable.
type Contact struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// ContactInput is the editable part of a contact, as submitted by a form.
type ContactInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

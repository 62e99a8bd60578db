package models

import "time"

// NoteStatus is the moderation state of a note.
type NoteStatus string

const (
	NoteStatusPending  NoteStatus = "pending"
	NoteStatusApproved NoteStatus = "approved"
	NoteStatusRejected NoteStatus = "rejected"
)

// Uploader identifies the author of a note.
type Uploader struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Note struct {
	ID           string     `json:"_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Subject      string     `json:"subject"`
	Semester     string     `json:"semester"`
	Branch       string     `json:"branch"`
	FileURL      string     `json:"fileUrl"`
	CloudinaryID string     `json:"cloudinaryId,omitempty"`
	UploadedBy   *Uploader  `json:"uploadedBy,omitempty"`
	Status       NoteStatus `json:"status"`
	Downloads    int        `json:"downloads"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// NoteFilter narrows a note listing. Empty fields are not sent.
type NoteFilter struct {
	Semester string
	Branch   string
	Subject  string
}

// NewNote is the body of a note creation request. FileURL and
// CloudinaryID come from the object storage upload.
type NewNote struct {
	Title        string `json:"title" validate:"notblank,max=200"`
	Description  string `json:"description" validate:"notblank,max=2000"`
	Semester     string `json:"semester" validate:"required,semester"`
	Branch       string `json:"branch" validate:"notblank"`
	Subject      string `json:"subject" validate:"notblank"`
	FileURL      string `json:"fileUrl"`
	CloudinaryID string `json:"cloudinaryId,omitempty"`
}

// Stats are the admin dashboard counters.
type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalNotes    int `json:"totalNotes"`
	PendingNotes  int `json:"pendingNotes"`
	ApprovedNotes int `json:"approvedNotes"`
}

// SiteStats are the public counters shown on the home view.
type SiteStats struct {
	TotalNotes          int `json:"totalNotes"`
	TotalDownloads      int `json:"totalDownloads"`
	TotalUsers          int `json:"totalUsers"`
	TotalQuestionPapers int `json:"totalQuestionPapers"`
}

package models

// QuestionPaper is a purchasable past exam paper. Purchased is reported per
// requesting user.
type QuestionPaper struct {
	ID            string `json:"_id"`
	Title         string `json:"title"`
	Branch        string `json:"branch"`
	Semester      string `json:"semester"`
	Price         int    `json:"price"`
	FileURL       string `json:"fileUrl,omitempty"`
	Purchased     bool   `json:"purchased"`
	PurchaseCount int    `json:"purchaseCount"`
}

// PaperFilter narrows a question paper listing.
type PaperFilter struct {
	Semester string
	Branch   string
}

// NewPaper holds the form fields of a question paper upload.
type NewPaper struct {
	Title    string `json:"title" validate:"notblank,max=200"`
	Semester string `json:"semester" validate:"required,semester"`
	Branch   string `json:"branch" validate:"notblank"`
	Price    int    `json:"price" validate:"gte=0"`
}

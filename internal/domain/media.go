package domain

// Media describes an uploaded file.
type Media struct {
	Meta
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Alt          string `json:"alt,omitempty"`
	UploadedBy   string `json:"uploaded_by,omitempty"`
}

package models

// ReadBarcodeRequest carries a base64 photo of a student card
type ReadBarcodeRequest struct {
	Image  string `json:"image"`
	Format string `json:"format,omitempty"`
}

// ReadBarcodeResponse is returned for both detected and undetected barcodes.
// Barcode and FirstName serialize as null when absent.
type ReadBarcodeResponse struct {
	Success   bool    `json:"success"`
	Barcode   *string `json:"barcode"`
	FirstName *string `json:"firstName"`
	Message   string  `json:"message"`
}

// StudentProfileResponse describes one student
type StudentProfileResponse struct {
	Success   bool        `json:"success"`
	UID       string      `json:"uid"`
	FirstName string      `json:"firstName"`
	FullName  *string     `json:"fullName"`
	Number    interface{} `json:"number"`
	Language  string      `json:"language"`
	Message   string      `json:"message"`
}

// UpdateLanguageRequest changes a student's language preference
type UpdateLanguageRequest struct {
	UID      string `json:"uid"`
	Language string `json:"language"`
}

// StudentRecord mirrors a table row using the table's column names
type StudentRecord struct {
	UID      string      `json:"UID"`
	Name     *string     `json:"Name"`
	Number   interface{} `json:"Number"`
	Language *string     `json:"Language"`
}

// UpdateLanguageResponse returns the rows changed by the update
type UpdateLanguageResponse struct {
	Success bool            `json:"success"`
	Data    []StudentRecord `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is served by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

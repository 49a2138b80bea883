package document

// UploadDocumentRequest records a file the client already uploaded.
type UploadDocumentRequest struct {
	Type     string `json:"type" validate:"required,oneof=LOAN_STATEMENT INCOME_VERIFICATION ENROLLMENT_PROOF TAX_DOCUMENT OTHER" example:"LOAN_STATEMENT"`
	FileName string `json:"fileName" validate:"required,max=255"`
	FileURL  string `json:"fileUrl" validate:"required,url"`
	FileSize int64  `json:"fileSize" validate:"gte=0"`
	MimeType string `json:"mimeType" validate:"required,max=127" example:"application/pdf"`
}

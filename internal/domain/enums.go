package domain

// FileType represents the document types accepted for extraction.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// FieldKey names a correctable expense field.
type FieldKey string

const (
	FieldTotal    FieldKey = "total"
	FieldDate     FieldKey = "date"
	FieldMerchant FieldKey = "merchant"
	FieldCategory FieldKey = "category"
)

// ExpenseStatus represents the lifecycle of an expense record.
type ExpenseStatus string

const (
	ExpenseStatusPendingReview ExpenseStatus = "pending_review"
	ExpenseStatusConfirmed     ExpenseStatus = "confirmed"
)

// ExpenseSource tags where an expense came from.
const (
	SourceReceiptPhoto    = "receipt_photo"
	SourceReceiptDocument = "receipt_document"
	SourceExternal        = "external_document"
)

// AuditAction is the kind of mutation recorded in the expense audit log.
type AuditAction string

const (
	AuditExpenseExtracted AuditAction = "expense.extracted"
	AuditExpenseConfirmed AuditAction = "expense.confirmed"
	AuditExpenseCorrected AuditAction = "expense.corrected"
)

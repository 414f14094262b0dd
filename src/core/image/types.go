package image

// UploadedImage one admitted file, held in memory for the duration of a request
type UploadedImage struct {
	Field       string // form field name
	FileName    string // client supplied file name
	ContentType string // declared media type, lower-cased without parameters
	Data        []byte
	Size        int64
}

// ValidationResult outcome of inspecting an uploaded image
type ValidationResult struct {
	IsValid  bool
	Format   string // format reported by the decoder
	Width    int
	Height   int
	FileSize int64
	Error    error // *apperr.Error when IsValid is false
}

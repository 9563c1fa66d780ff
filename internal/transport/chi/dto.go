package chi

// errorCode identifies an error category in API responses.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeConversationNotFound errorCode = "conversation_not_found"
	codeDocumentFetchFailed  errorCode = "document_fetch_failed"
	codeEmptyDocument        errorCode = "empty_document"
	codeGenerationFailed     errorCode = "generation_failed"
	codeInternalError        errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type chatMessageRequest struct {
	URL            string `json:"url"`
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatMessageResponse struct {
	Answer         string   `json:"answer"`
	SourceChunks   []string `json:"source_chunks"`
	ConversationID string   `json:"conversation_id"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

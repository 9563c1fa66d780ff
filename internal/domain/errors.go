package domain

import "errors"

var (
	// ErrFetchFailed signals a network or status failure fetching a document.
	ErrFetchFailed = errors.New("document fetch failed")
	// ErrEmptyContent signals that extraction produced no text.
	ErrEmptyContent = errors.New("document has no extractable content")
	// ErrConversationNotFound signals a missing conversation.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrPersistence signals a store write or update failure.
	ErrPersistence = errors.New("persistence failed")
	// ErrGeneration signals an answer generation failure or timeout.
	ErrGeneration = errors.New("answer generation failed")
)

package conversation

import "errors"

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownAnswer   = errors.New("unknown answer")
	ErrNotInitialized  = errors.New("advisor not initialized")
)

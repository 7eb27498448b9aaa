package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is against these.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPermissionDenied = errors.New("permission denied")
)

var (
	// ErrQuestionNotFound is returned when no question matches the lookup.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrQuizNotFound is returned when no quiz matches the lookup.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrUserNotFound is returned when the caller's user record is missing.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrAlreadyAnswered is returned on a second answer to the same question.
	ErrAlreadyAnswered = fmt.Errorf("question already answered: %w", ErrConflict)
	// ErrAlreadyParticipated is returned on a second selection for the same quiz.
	ErrAlreadyParticipated = fmt.Errorf("quiz already participated: %w", ErrConflict)
	// ErrDateAlreadyAssigned is returned when a day already has a question.
	ErrDateAlreadyAssigned = fmt.Errorf("date already has a question: %w", ErrConflict)

	ErrInvalidOption   = fmt.Errorf("selected option must be one of A, B, C, D: %w", ErrInvalidArgument)
	ErrEmptyContent    = fmt.Errorf("content must not be empty: %w", ErrInvalidArgument)
	ErrInvalidCategory = fmt.Errorf("unknown question category: %w", ErrInvalidArgument)

	// ErrNotParticipated guards results that are only visible after taking part.
	ErrNotParticipated = fmt.Errorf("results are visible only to participants: %w", ErrPermissionDenied)
)

// ErrDuplicate is reported by stores when an insert hits a unique key.
// Services translate it into the matching conflict error.
var ErrDuplicate = errors.New("duplicate key")

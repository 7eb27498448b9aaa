package domain

import "time"

// Category groups daily questions by theme.
type Category string

const (
	CategoryDaily  Category = "DAILY"
	CategoryMemory Category = "MEMORY"
	CategoryTravel Category = "TRAVEL"
	CategoryFood   Category = "FOOD"
	CategoryHobby  Category = "HOBBY"
	CategoryFamily Category = "FAMILY"
	CategoryFuture Category = "FUTURE"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDaily, CategoryMemory, CategoryTravel, CategoryFood, CategoryHobby, CategoryFamily, CategoryFuture:
		return true
	}
	return false
}

// Question is a daily prompt answered in free text.
type Question struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuestionAssignment pins a question to a calendar day.
type QuestionAssignment struct {
	Date       time.Time `json:"date"`
	QuestionID int64     `json:"questionId"`
}

// Answer is one user's response to one question.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"questionId"`
	UserID     int64     `json:"userId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Quiz is a four-option multiple choice prompt.
type Quiz struct {
	ID              int64     `json:"id"`
	QuestionContent string    `json:"questionContent"`
	OptionA         string    `json:"optionA"`
	OptionB         string    `json:"optionB"`
	OptionC         string    `json:"optionC"`
	OptionD         string    `json:"optionD"`
	CorrectAnswer   Option    `json:"correctAnswer"`
	CreatedAt       time.Time `json:"createdAt"`
}

// QuizSelection records the option a user picked. IsCorrect is fixed when the
// selection is created.
type QuizSelection struct {
	ID             int64     `json:"id"`
	QuizID         int64     `json:"quizId"`
	UserID         int64     `json:"userId"`
	SelectedOption Option    `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User is the subset of a family member profile the core reads.
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FamilyRole string `json:"familyRole"`
	FamilyCode string `json:"familyCode"`
	AvatarURL  string `json:"avatarUrl"`
}

// SelectionDetail summarizes one participant's selection. SelectedOption and
// IsCorrect are nil when the viewer has not participated.
type SelectionDetail struct {
	UserID         int64   `json:"userId"`
	UserName       string  `json:"userName"`
	SelectedOption *Option `json:"selectedOption"`
	IsCorrect      *bool   `json:"isCorrect"`
}

// QuizView is the current quiz as seen by one user.
type QuizView struct {
	ID                int64             `json:"id"`
	QuestionContent   string            `json:"questionContent"`
	OptionA           string            `json:"optionA"`
	OptionB           string            `json:"optionB"`
	OptionC           string            `json:"optionC"`
	OptionD           string            `json:"optionD"`
	HasParticipated   bool              `json:"hasParticipated"`
	CorrectAnswer     *Option           `json:"correctAnswer"`
	MySelection       *Option           `json:"mySelection"`
	IsMyAnswerCorrect *bool             `json:"isMyAnswerCorrect"`
	ParticipantCount  int               `json:"participantCount"`
	SelectionDetails  []SelectionDetail `json:"selectionDetails"`
}

// QuizResults is pushed to feed subscribers after each new selection.
type QuizResults struct {
	QuizID    int64             `json:"quizId"`
	Details   []SelectionDetail `json:"details"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

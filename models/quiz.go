package models

import "time"

const (
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeMix            = "mix"
)

type Question struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
}

type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// QuizContent is the transient output of the content generator. It is
// embedded into a Quiz document at creation time, never stored on its own.
type QuizContent struct {
	Questions  []Question  `json:"questions"`
	Flashcards []Flashcard `json:"flashcards"`
}

type Quiz struct {
	QuizID      string      `json:"quizId"`
	Questions   []Question  `json:"questions"`
	Flashcards  []Flashcard `json:"flashcards"`
	ContentName string      `json:"contentName"`
	UserID      string      `json:"userId"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// QuizSummary is the listing shape used by the recent/search endpoints.
type QuizSummary struct {
	QuizID      string    `json:"quiz_id"`
	ContentName string    `json:"content_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateContentRequest struct {
	Text              string `json:"text"`
	QuestionType      string `json:"question_type"`
	NumOptions        int    `json:"num_options"`
	NumQuestions      int    `json:"num_questions"`
	IncludeFlashcards bool   `json:"include_flashcards"`
	ContentName       string `json:"content_name"`
	UserID            string `json:"user_id"`
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"quizforge/models"

	"github.com/tmc/langchaingo/llms"
)

const GENERATION_PROMPT = `Generate exactly %d quiz questions and %sbased on this text: "%s".
Quiz type: "%s" (true_false, multiple_choice, or mix).
For multiple_choice, provide %d options, exactly one correct.
Return in JSON format, no extra text or markdown:
{
    "questions": [
        {"question": "Text", "type": "true_false or multiple_choice", "options": ["opt1", ...] (for multiple_choice), "answer": "correct"}
    ],
    "flashcards": [
        {"term": "Term", "definition": "Definition"}
    ]
}`

const (
	fallbackQuestionText = "Error occurred. Is this a test?"
	fallbackTerm         = "Error"
	fallbackDefinition   = "Try again later"

	generationTimeout = 30 * time.Second
)

// GenerationOutcome reports which branch produced the content: a parsed
// model response, or the fixed fallback payload.
type GenerationOutcome int

const (
	OutcomeParsed GenerationOutcome = iota
	OutcomeFallback
)

type ContentService struct {
	llm llms.Model
}

func NewContentService(llm llms.Model) *ContentService {
	return &ContentService{llm: llm}
}

// GenerateContent builds the generation prompt, invokes the model, and
// parses its response into quiz content. It never returns an error: every
// failure mode (backend error, non-JSON response) collapses into the fixed
// fallback payload, so the caller always receives well-formed content.
// Callers are expected to pass pre-clamped numOptions and numQuestions.
func (s *ContentService) GenerateContent(ctx context.Context, text, questionType string, numOptions, numQuestions int, includeFlashcards bool) (*models.QuizContent, GenerationOutcome) {
	prompt := buildGenerationPrompt(text, questionType, numOptions, numQuestions, includeFlashcards)

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	log.Printf("[INFO] Calling LLM for content generation (%d questions, type %s)", numQuestions, questionType)
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		log.Printf("[ERROR] Content generation call failed, using fallback: %v", err)
		return fallbackContent(includeFlashcards), OutcomeFallback
	}

	cleaned := stripCodeFences(completion)

	var content models.QuizContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		log.Printf("[ERROR] Failed to parse generated content as JSON, using fallback: %v", err)
		return fallbackContent(includeFlashcards), OutcomeFallback
	}

	if content.Questions == nil {
		content.Questions = []models.Question{}
	}
	if !includeFlashcards || content.Flashcards == nil {
		content.Flashcards = []models.Flashcard{}
	}

	log.Printf("[INFO] Successfully generated content with %d questions and %d flashcards",
		len(content.Questions), len(content.Flashcards))
	return &content, OutcomeParsed
}

func buildGenerationPrompt(text, questionType string, numOptions, numQuestions int, includeFlashcards bool) string {
	flashcardsPart := ""
	if includeFlashcards {
		flashcardsPart = "flashcards "
	}
	return fmt.Sprintf(GENERATION_PROMPT, numQuestions, flashcardsPart, text, questionType, numOptions)
}

// stripCodeFences removes markdown code-fence markers that models add
// despite being told not to.
func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// fallbackContent is the fixed payload returned on any generation failure.
// It is always well-formed per the Question/Flashcard shapes.
func fallbackContent(includeFlashcards bool) *models.QuizContent {
	content := &models.QuizContent{
		Questions: []models.Question{
			{
				Question: fallbackQuestionText,
				Type:     models.QuestionTypeTrueFalse,
				Answer:   "True",
			},
		},
		Flashcards: []models.Flashcard{},
	}

	if includeFlashcards {
		content.Flashcards = []models.Flashcard{
			{Term: fallbackTerm, Definition: fallbackDefinition},
		}
	}

	return content
}

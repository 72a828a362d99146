package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/internal/model"
)

// Generator produces the final tutoring answer from retrieved context.
type Generator interface {
	GenerateAnswer(ctx context.Context, p AnswerPrompt) (string, error)
}

// AnswerPrompt carries everything the generation prompt needs.
type AnswerPrompt struct {
	Question     string
	Context      string
	Grade        int
	Board        model.Board
	Language     model.Language
	MethodTags   []string
	ContentTypes []string
}

const answerFallback = "I'm having trouble generating a response right now. Please try again."

// AIService calls an OpenAI-compatible chat completion endpoint.
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type boardInstruction struct {
	style string
	focus string
}

var boardInstructions = map[model.Board]boardInstruction{
	model.CBSE: {
		style: "Follow NCERT pattern with clear explanations and step-by-step solutions.",
		focus: "Emphasize conceptual understanding and exam preparation.",
	},
	model.ICSE: {
		style: "Provide comprehensive explanations with multiple approaches.",
		focus: "Include detailed reasoning and encourage analytical thinking.",
	},
	model.SSC: {
		style: "Use simple, direct explanations with local context where applicable.",
		focus: "Focus on practical understanding and textbook methods.",
	},
}

func gradeInstruction(grade int) string {
	switch {
	case grade <= 5:
		return "Use simple language with examples a young child can understand."
	case grade <= 8:
		return "Use clear explanations with appropriate technical terms defined."
	default:
		return "Use subject-appropriate terminology with detailed explanations."
	}
}

func (s *AIService) GenerateAnswer(ctx context.Context, p AnswerPrompt) (string, error) {
	board, ok := boardInstructions[p.Board]
	if !ok {
		board = boardInstructions[model.CBSE]
	}

	methods := "general explanation"
	if len(p.MethodTags) > 0 {
		methods = strings.Join(p.MethodTags, ", ")
	}

	systemPrompt := fmt.Sprintf(`You are an expert educator for grade %d %s board students.

%s
%s
%s

Available methods in the content: %s
Content types available: %s

IMPORTANT INSTRUCTIONS:
1. Base your response ONLY on the provided context
2. Use methods and approaches that match the student's grade and board
3. If asked about methods not in the context, mention they'll learn it later
4. Maintain consistency with the board's teaching methodology
5. If content is in %s, respond accordingly

Context:
%s`,
		p.Grade, p.Board,
		board.style, board.focus, gradeInstruction(p.Grade),
		methods, strings.Join(p.ContentTypes, ", "),
		p.Language, p.Context)

	userPrompt := fmt.Sprintf("Student Question: %s\n\nPlease provide an answer appropriate for grade %d %s board.",
		p.Question, p.Grade, p.Board)

	jsonData, err := json.Marshal(chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

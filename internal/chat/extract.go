package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/GabrielSantos777/planix/internal/domain"
)

// DefaultModelName is the Gemini model used for free-text extraction.
const DefaultModelName = "gemini-2.5-flash"

// Extraction is the structured best-effort guess the model produces from a
// free-text message like "spent 45 on groceries".
type Extraction struct {
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    string
	Description string
}

// Extractor turns free text into a structured transaction guess.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// GeminiExtractor implements Extractor with a Gemini call.
type GeminiExtractor struct {
	model string
}

// NewGeminiExtractor creates an extractor for the given model name; empty
// falls back to DefaultModelName.
func NewGeminiExtractor(model string) *GeminiExtractor {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiExtractor{model: model}
}

const extractionPrompt = "You are a personal-finance assistant. The user describes one financial " +
	"transaction in free text, in any language.\n\n" +
	"Task:\n" +
	"- Extract the single transaction described.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"amount\": number, always positive\n" +
	"- \"type\": string, \"income\" or \"expense\"\n" +
	"- \"category\": string, a short category guess (e.g. \"groceries\", \"salary\"), or \"\"\n" +
	"- \"description\": string, a short human-readable description\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"

// Extract sends the text to Gemini and parses the strict-JSON reply.
func (e *GeminiExtractor) Extract(ctx context.Context, text string) (*Extraction, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Extract: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{Text: "Message:\n" + text},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Extract: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Extract: empty response from model")
	}

	return parseExtraction(rawText)
}

type extractionWire struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

func parseExtraction(raw string) (*Extraction, error) {
	clean := cleanModelJSON(raw)

	var wire extractionWire
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, fmt.Errorf("parseExtraction: unmarshal JSON: %w\nraw response: %s", err, raw)
	}
	if wire.Amount <= 0 {
		return nil, fmt.Errorf("parseExtraction: non-positive amount %v", wire.Amount)
	}

	txType := domain.TransactionTypeExpense
	if strings.EqualFold(strings.TrimSpace(wire.Type), "income") {
		txType = domain.TransactionTypeIncome
	}

	return &Extraction{
		Amount:      decimal.NewFromFloat(wire.Amount),
		Type:        txType,
		Category:    strings.TrimSpace(wire.Category),
		Description: strings.TrimSpace(wire.Description),
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk the model may
// emit despite the instructions, keeping only the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}

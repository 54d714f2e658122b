package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"majordomo-backend/utils"
)

const (
	groqEndpoint      = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel  = "llama-3.3-70b-versatile"
	scribeTemperature = 0.7
	scribeMaxTokens   = 500
)

// scribeTags is the closed tag vocabulary the scribe may assign. Anything
// outside it is dropped from the response.
var scribeTags = []string{"chores", "cleaning", "exercise", "health", "learning", "organization"}

// ScribeClient calls the Groq chat-completions API to dress plain chore
// titles up as fantasy quests.
type ScribeClient struct {
	APIKey string
	Model  string
	Client *http.Client
}

func NewScribeClient() *ScribeClient {
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = defaultGroqModel
	}
	return &ScribeClient{
		APIKey: os.Getenv("GROQ_API_KEY"),
		Model:  model,
		Client: utils.HTTPClient,
	}
}

// Enabled reports whether a Groq API key is configured.
func (sc *ScribeClient) Enabled() bool {
	return sc.APIKey != ""
}

// QuestContent is the scribe's output. The three 1-5 scores drive the
// reward economy.
type QuestContent struct {
	DisplayName string
	Description string
	Tags        string
	Time        int
	Effort      int
	Dread       int
}

// XP derives the reward from the scores: (time + effort + dread) * 2.
func (qc *QuestContent) XP() int {
	xp := (qc.Time + qc.Effort + qc.Dread) * 2
	if xp < 1 {
		return 1
	}
	return xp
}

// Gold is half the XP.
func (qc *QuestContent) Gold() int {
	gold := qc.XP() / 2
	if gold < 1 {
		return 1
	}
	return gold
}

// FallbackContent is the deterministic stand-in when the scribe cannot run:
// the title-cased quest title as display name and mid-scale scores.
func FallbackContent(title string) *QuestContent {
	return &QuestContent{
		DisplayName: cases.Title(language.English).String(title),
		Time:        2,
		Effort:      2,
		Dread:       2,
	}
}

func scribePrompt(title string) string {
	return fmt.Sprintf(`You are a fantasy game quest designer. Generate engaging quest content for this quest title:

%q

Return ONLY a valid JSON object (no markdown, no code blocks) with these exact fields:
- display_name: A fantasy variant of the title (1-2 words, creative and thematic)
- description: A witty, engaging description (1-2 sentences, in fantasy RPG style)
- tags: Comma-separated tags from this list: chores, cleaning, exercise, health, learning, organization
- time: Estimated time on scale 1-5 (1=quick, 5=long)
- effort: Physical/mental effort on scale 1-5 (1=easy, 5=hard)
- dread: How much you dread doing it on scale 1-5 (1=love it, 5=hate it)

Example output:
{"display_name": "The Cookery Cleanup", "description": "Vanquish the grimy counters and slay the sink dragon.", "tags": "chores,cleaning", "time": 3, "effort": 2, "dread": 4}

Now generate for: %s`, title, title)
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
}

// GenerateQuestContent asks Groq for quest content for the given title.
func (sc *ScribeClient) GenerateQuestContent(ctx context.Context, title string) (*QuestContent, error) {
	payload, err := json.Marshal(groqRequest{
		Model:       sc.Model,
		Messages:    []groqMessage{{Role: "user", Content: scribePrompt(title)}},
		Temperature: scribeTemperature,
		MaxTokens:   scribeMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", groqEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create Groq request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sc.APIKey)

	resp, err := sc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Groq request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("Groq returned %d: %s", resp.StatusCode, string(body))
	}

	var out groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode Groq response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("Groq returned no choices")
	}

	return parseQuestContent(out.Choices[0].Message.Content)
}

// parseQuestContent decodes the model's JSON. Missing scores default to 2,
// out-of-range scores clamp to 1..5, unknown tags are dropped.
func parseQuestContent(raw string) (*QuestContent, error) {
	var data struct {
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
		Tags        string `json:"tags"`
		Time        *int   `json:"time"`
		Effort      *int   `json:"effort"`
		Dread       *int   `json:"dread"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		snippet := raw
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("scribe returned invalid JSON: %s", snippet)
	}

	return &QuestContent{
		DisplayName: strings.TrimSpace(data.DisplayName),
		Description: strings.TrimSpace(data.Description),
		Tags:        filterScribeTags(data.Tags),
		Time:        clampScore(data.Time),
		Effort:      clampScore(data.Effort),
		Dread:       clampScore(data.Dread),
	}, nil
}

func clampScore(v *int) int {
	if v == nil {
		return 2
	}
	if *v < 1 {
		return 1
	}
	if *v > 5 {
		return 5
	}
	return *v
}

func filterScribeTags(raw string) string {
	var kept []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		for _, known := range scribeTags {
			if tag == known {
				kept = append(kept, tag)
				break
			}
		}
	}
	return strings.Join(kept, ",")
}

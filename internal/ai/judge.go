package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

// Classification is the judge's ruling on one player question.
type Classification string

const (
	ClassificationSolved     Classification = "solved"
	ClassificationYes        Classification = "yes"
	ClassificationNo         Classification = "no"
	ClassificationPartial    Classification = "partial"
	ClassificationIrrelevant Classification = "irrelevant"
)

// Verdict is the judge's structured answer.
type Verdict struct {
	Classification Classification `json:"classification"`
	Answer         string         `json:"answer"`
}

// JudgeUnavailableText is the degraded answer used whenever the gateway
// cannot produce a usable ruling.
const JudgeUnavailableText = "裁判暫時無法回應，請稍後再試一次。"

const judgeRubric = `You are the judge of a lateral-thinking puzzle game ("turtle soup").
Players ask questions and you answer strictly from the puzzle's full solution.

Puzzle question:
%s

Full solution (secret, never reveal it directly):
%s

Classify the player's latest input into exactly one of:
- "solved": the input is a DECLARATIVE statement that already verbalizes the
  full causal chain of the solution. A question is never "solved".
- "yes": a closed yes/no question whose answer is unambiguously yes
  according to the solution.
- "no": a closed yes/no question whose answer is unambiguously no
  according to the solution.
- "partial": the question's premise is partly true and partly false relative
  to the solution; the player should split it into smaller questions.
- "irrelevant": open-ended, unrelated, or undecidable from the solution.

Respond ONLY with JSON: {"classification": "...", "answer": "..."}.
"answer" is a short reply to the player in the language they used.
For "partial" answer along the lines of "是也不是" (yes and no).
Never reveal the solution in "answer".`

// Judge classifies player questions against the fixed puzzle. Stateless:
// a pure function of (question, history, puzzle) plus the model call.
type Judge struct {
	completer Completer
	puzzle    domain.Puzzle
}

func NewJudge(completer Completer, puzzle domain.Puzzle) *Judge {
	return &Judge{completer: completer, puzzle: puzzle}
}

// Evaluate asks the model to classify the player's question. Any gateway or
// parse failure degrades to an irrelevant verdict with fixed fallback text.
func (j *Judge) Evaluate(ctx context.Context, playerQuestion string, recentHistory []domain.AIChatMessage) Verdict {
	messages := []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(judgeRubric, j.puzzle.Question, j.puzzle.FullAnswer)},
	}
	for _, h := range recentHistory {
		messages = append(messages,
			Message{Role: RoleUser, Content: h.UserMessage},
			Message{Role: RoleAssistant, Content: h.JudgeReply},
		)
	}
	messages = append(messages, Message{Role: RoleUser, Content: playerQuestion})

	raw, err := j.completer.Complete(ctx, messages, CompleteOptions{
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		log.L().Warn().Err(err).Msg("judge evaluation failed, degrading to irrelevant")
		return Verdict{Classification: ClassificationIrrelevant, Answer: JudgeUnavailableText}
	}

	return parseVerdict(raw)
}

func parseVerdict(raw string) Verdict {
	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.L().Warn().Err(err).Str("raw", raw).Msg("judge returned malformed JSON")
		return Verdict{Classification: ClassificationIrrelevant, Answer: JudgeUnavailableText}
	}

	v.Classification = normalizeClassification(string(v.Classification))
	if v.Answer == "" {
		v.Answer = JudgeUnavailableText
	}
	return v
}

func normalizeClassification(s string) Classification {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solved":
		return ClassificationSolved
	case "yes":
		return ClassificationYes
	case "no":
		return ClassificationNo
	case "partial", "yes and no", "yes_and_no":
		return ClassificationPartial
	default:
		return ClassificationIrrelevant
	}
}

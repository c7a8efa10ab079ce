package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/leowang3268/puzzle-chat-ai/internal/domain"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

// Mode selects one of the three suggestion-generation strategies.
type Mode string

const (
	ModeBaseline Mode = "A" // colloquial summary plus a generic closing question
	ModeProcess  Mode = "B" // summary of the finding only, no new directions
	ModeCohesion Mode = "C" // fixed interaction sequences keyed on the judge's ruling
)

// ParseMode validates a wire-level mode value.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeBaseline, ModeProcess, ModeCohesion:
		return Mode(s), true
	default:
		return "", false
	}
}

// SuggestionUnavailableText is the degraded suggestion used whenever the
// gateway cannot produce one.
const SuggestionUnavailableText = "小幫手暫時無法提供建議，先直接和夥伴聊聊你的發現吧。"

const (
	suggestionTempBaseline = 0.2
	suggestionTempCreative = 0.7
)

// SuggestionInput is everything a suggestion strategy consumes.
type SuggestionInput struct {
	UserName       string
	PlayerQuestion string
	JudgeAnswer    string
	Classification Classification
	ChatHistory    []domain.ChatMessage
}

const promptModeBaseline = `You help a player of a cooperative lateral-thinking puzzle game talk to their partner.
The player just asked the AI judge a question and got an answer.

Puzzle: %s
Player's question to the judge: %s
Judge's answer: %s

Recent chat between the player ("Me") and their partner ("Partner"):
%s

Draft ONE short first-person message the player could send to their partner:
a colloquial summary of what the judge said, ending with a generic invitation
like "你覺得呢？" (what do you think?). Write in the language the players use.
Output only the message text.`

const promptModeProcess = `You help a player of a cooperative lateral-thinking puzzle game talk to their partner.
The player just asked the AI judge a question and got an answer.

Puzzle: %s
Player's question to the judge: %s
Judge's answer: %s

Recent chat between the player ("Me") and their partner ("Partner"):
%s

Draft ONE short first-person message the player could send to their partner,
summarizing only what was just found out. You must NOT propose any new
direction, next step, or further question to investigate. Write in the
language the players use. Output only the message text.`

const promptModeCohesionAnswer = `You help a player of a cooperative lateral-thinking puzzle game talk to their partner.
The player just asked the AI judge a question and got an answer.

Puzzle: %s
Player's question to the judge: %s
Judge's answer: %s

Recent chat between the player ("Me") and their partner ("Partner"):
%s

Draft ONE short first-person message that opens an "answer, then ask an
open-ended follow-up question" sequence: share what the judge said, then ask
the partner one open-ended question about it. If the partner's earlier guess
in the chat was just validated, give them credit for it. Never confuse who is
"Me" and who is "Partner", never propose a new solve direction yourself, and
output nothing besides the single message. Write in the language the players
use.`

const promptModeCohesionApology = `You help a player of a cooperative lateral-thinking puzzle game talk to their partner.
The player just asked the AI judge a question and the judge found it
irrelevant to the puzzle.

Puzzle: %s
Player's question to the judge: %s
Judge's answer: %s

Recent chat between the player ("Me") and their partner ("Partner"):
%s

Draft ONE short first-person message that opens an "apologize, then invite
encouragement" sequence: briefly apologize for the dead end and invite the
partner to keep going together. If the partner previously suggested a related
direction in the chat, credit them for it. Never confuse who is "Me" and who
is "Partner", never propose a new solve direction yourself, and output
nothing besides the single message. Write in the language the players use.`

// Composer drafts partner-facing suggestion messages. On gateway failure it
// returns a fixed degraded-service message, never an error.
type Composer struct {
	completer Completer
	puzzle    domain.Puzzle
}

func NewComposer(completer Completer, puzzle domain.Puzzle) *Composer {
	return &Composer{completer: completer, puzzle: puzzle}
}

// BuildMessages constructs the prompt payload for the given mode.
func (c *Composer) BuildMessages(mode Mode, in SuggestionInput) []Message {
	history := RenderHistory(in.ChatHistory, in.UserName)

	var prompt string
	switch mode {
	case ModeProcess:
		prompt = promptModeProcess
	case ModeCohesion:
		if in.Classification == ClassificationIrrelevant {
			prompt = promptModeCohesionApology
		} else {
			prompt = promptModeCohesionAnswer
		}
	default:
		prompt = promptModeBaseline
	}

	return []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(prompt, c.puzzle.Question, in.PlayerQuestion, in.JudgeAnswer, history)},
		{Role: RoleUser, Content: "請幫我草擬這則訊息。"},
	}
}

// Compose runs the selected strategy and returns plain suggestion text.
func (c *Composer) Compose(ctx context.Context, mode Mode, in SuggestionInput) string {
	temperature := suggestionTempCreative
	if mode == ModeBaseline {
		temperature = suggestionTempBaseline
	}

	text, err := c.completer.Complete(ctx, c.BuildMessages(mode, in), CompleteOptions{
		Temperature: temperature,
	})
	if err != nil {
		log.L().Warn().Err(err).Str(log.FieldMode, string(mode)).Msg("suggestion composition failed, using fallback")
		return SuggestionUnavailableText
	}
	return strings.TrimSpace(text)
}

// RenderHistory renders chat lines as alternating "Me"/"Partner" relative to
// the current user.
func RenderHistory(history []domain.ChatMessage, self string) string {
	if len(history) == 0 {
		return "(no messages yet)"
	}

	var b strings.Builder
	for _, m := range history {
		speaker := "Partner"
		if m.UserName == self {
			speaker = "Me"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

package memory

import (
	"os"
	"strings"

	"github.com/sandevgo/workbot/internal/core"
)

const defaultSystemPrompt = `You are WorkBot, an assistant that helps a team track work items.
Answer from the conversation so far. When earlier turns disagree, trust the most recent one.
If you do not know the current state of an item, say so instead of guessing.`

type SysPrompt struct {
	cfg core.PromptConfig
}

func NewSysPrompt(cfg core.PromptConfig) *SysPrompt {
	return &SysPrompt{
		cfg: cfg,
	}
}

// Build returns SYSTEM.md and IDENTITY.md as system messages. Without
// SYSTEM.md the built-in prompt is used.
func (p *SysPrompt) Build() []core.Message {
	messages := make([]core.Message, 0, 2)
	readFile := func(path string) string {
		content, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(content))
	}

	system := readFile(p.cfg.GetSystemPath())
	if system == "" {
		system = defaultSystemPrompt
	}
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: system})

	if content := readFile(p.cfg.GetIdentityPath()); content != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: content})
	}
	return messages
}

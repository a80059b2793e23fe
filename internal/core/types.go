package core

import (
	"time"

	"github.com/google/uuid"
)

const (
	WorkbotName      = "WorkBot"
	WorkbotUserAgent = "WorkBot-Agent/0.1"
	WorkbotVersion   = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// EmbeddingStatus tells whether an embedding was requested for a message and how it went.
type EmbeddingStatus uint8

const (
	EmbeddingNotAttempted EmbeddingStatus = iota
	EmbeddingFailed
	EmbeddingSucceeded
)

func (s EmbeddingStatus) String() string {
	switch s {
	case EmbeddingFailed:
		return "failed"
	case EmbeddingSucceeded:
		return "succeeded"
	default:
		return "not_attempted"
	}
}

// Embedding is the embedding state of a message. A succeeded state always
// carries a non-empty vector; the other states never carry one.
type Embedding struct {
	status EmbeddingStatus
	vector []float32
}

func NotAttempted() Embedding {
	return Embedding{status: EmbeddingNotAttempted}
}

func FailedEmbedding() Embedding {
	return Embedding{status: EmbeddingFailed}
}

// Embedded records a successful attempt. An empty vector is recorded as a failed attempt.
func Embedded(vec []float32) Embedding {
	if len(vec) == 0 {
		return FailedEmbedding()
	}
	return Embedding{status: EmbeddingSucceeded, vector: vec}
}

func (e Embedding) Status() EmbeddingStatus {
	return e.status
}

func (e Embedding) Vector() ([]float32, bool) {
	return e.vector, e.status == EmbeddingSucceeded
}

func (e Embedding) Attempted() bool {
	return e.status != EmbeddingNotAttempted
}

type Message struct {
	ID        string    `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"-"`
	Embedding Embedding `json:"-"`
}

func NewMessage(role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// EmbeddingUpdate is a new embedding state for a stored message.
type EmbeddingUpdate struct {
	MessageID string
	Embedding Embedding
}

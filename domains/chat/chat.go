package chat

import "context"

// Message is one turn of a review conversation. Role is "user" or
// "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type ChatRequest struct {
	UserID      string    `json:"-"`
	MediaID     int64     `json:"media_id" form:"media_id"`
	MediaKind   string    `json:"media_kind" form:"media_kind"`
	Message     string    `json:"message" form:"message"`
	ChatHistory []Message `json:"chat_history,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type IChatUsecase interface {
	ReviewChat(ctx context.Context, request ChatRequest) (ChatResponse, error)
}

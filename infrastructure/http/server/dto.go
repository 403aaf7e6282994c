package server

import (
	"chat-poll/domain"

	"github.com/samber/lo"
)

const timeLayout = "15:04:05"

type registerRequest struct {
	Name string `json:"name"`
}

type postMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toParticipantResponses(participants []domain.Participant) []participantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) participantResponse {
		return participantResponse{Name: p.Name, LastStatus: p.LastSeen.UnixMilli()}
	})
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Kind),
		Time: m.Time.UTC().Format(timeLayout),
	}
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

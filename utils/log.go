package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

type DiscordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DiscordEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color"`
	Fields []DiscordEmbedField `json:"fields"`
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendLog(webhookURL string, level LogLevel, title string, fields []DiscordEmbedField) error {
	if webhookURL == "" {
		return nil
	}

	payload := DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:  string(level) + " " + title,
			Color:  getColor(level),
			Fields: fields,
		}},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}

	return nil
}

// LogModerationAction posts an audit embed for one applied moderation action.
func LogModerationAction(webhookURL, action string, groupID, actorID, targetID int64, reason string) error {
	level := Warn
	if action == "unmute" || action == "unban" {
		level = Info
	}
	return sendLog(webhookURL, level, "Moderation", []DiscordEmbedField{
		{Name: "Action", Value: action},
		{Name: "Group", Value: fmt.Sprintf("%d", groupID)},
		{Name: "Actor", Value: fmt.Sprintf("%d", actorID)},
		{Name: "Target", Value: fmt.Sprintf("%d", targetID)},
		{Name: "Reason", Value: reason},
	})
}

// LogSystemEvent posts an operational event (resets, startup, store errors).
func LogSystemEvent(webhookURL string, level LogLevel, operation, extraInfo string) error {
	return sendLog(webhookURL, level, "System", []DiscordEmbedField{
		{Name: "Operation", Value: operation},
		{Name: "Info", Value: extraInfo},
	})
}

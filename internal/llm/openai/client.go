package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

// Complete implements llm.ChatCompleter against the chat/completions endpoint.
// The response is returned as raw text; callers run the defensive decoder over
// it when they expect embedded JSON.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"model", req.Model,
		"temp", req.Temperature,
		"user_len", len(req.User),
	)

	messages := []map[string]any{}
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.User})

	body := map[string]any{
		"model":       req.Model,
		"temperature": req.Temperature,
		"messages":    messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	return c.send(ctx, rid, start, body)
}

// CompleteVision implements llm.VisionCompleter: one prompt plus one image as
// a base64 data URI with a detail level.
func (c *Client) CompleteVision(ctx context.Context, req llm.VisionRequest) (llm.ChatResponse, error) {
	rid := uuid.New().String()
	start := time.Now()

	detail := req.Detail
	if detail == "" {
		detail = "high"
	}

	c.logger.Info("llm.vision.start",
		"req_id", rid,
		"model", req.Model,
		"detail", detail,
		"image_bytes", len(req.ImageDataURL),
	)

	body := map[string]any{
		"model":       req.Model,
		"temperature": req.Temperature,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": req.Prompt},
					{
						"type": "image_url",
						"image_url": map[string]any{
							"url":    req.ImageDataURL,
							"detail": detail,
						},
					},
				},
			},
		},
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	return c.send(ctx, rid, start, body)
}

func (c *Client) send(ctx context.Context, rid string, start time.Time, body map[string]any) (llm.ChatResponse, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.complete.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResponse{}, common.NewAppError("INFERENCE_ERROR",
			fmt.Sprintf("chat completion call failed (status %d)", status), common.ErrInference)
	}

	var cc struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResponse{}, common.NewAppError("INFERENCE_ERROR",
			"decode chat completion response", common.ErrInference)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResponse{}, common.NewAppError("INFERENCE_ERROR",
			"no choices in chat completion response", common.ErrInference)
	}

	resp := llm.ChatResponse{
		Text:  strings.TrimSpace(cc.Choices[0].Message.Content),
		Model: cc.Model,
		Usage: llm.TokenUsage{
			PromptTokens:     cc.Usage.PromptTokens,
			CompletionTokens: cc.Usage.CompletionTokens,
			TotalTokens:      cc.Usage.TotalTokens,
		},
	}

	c.logger.Info("llm.complete.ok",
		"req_id", rid,
		"model", resp.Model,
		"text_len", len(resp.Text),
		"total_tokens", resp.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

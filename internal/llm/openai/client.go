package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kpcollege/studentportal/internal/llm"
)

// ExtractStudents implements llm.RosterExtractor via chat/completions with a
// JSON-Schema constraint. The response is re-validated locally row by row.
func (c *Client) ExtractStudents(ctx context.Context, documentText string) (llm.StudentExtraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract_students.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(documentText),
	)

	schema := llm.BuildStudentJSONSchema()
	messages := []map[string]any{
		{"role": "system", "content": llm.BuildStudentSystemPrompt()},
		{"role": "user", "content": llm.BuildUserPrompt(documentText) + "\n\nReturn ONLY JSON that matches the provided schema."},
		{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
	}

	content, err := c.complete(ctx, rid, messages)
	if err != nil {
		c.logger.Error("llm.extract_students.failed",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.StudentExtraction{}, err
	}

	out, err := llm.ParseStudentPayload(content, c.logger)
	if err != nil {
		c.logger.Error("llm.extract_students.payload_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return out, err
	}

	c.logger.Info("llm.extract_students.ok",
		"req_id", rid,
		"records", len(out.Students),
		"malformed", len(out.Malformed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ExtractAttendance implements llm.AttendanceExtractor. Text documents go in
// as plain content; image documents are attached as a base64 data URL and
// the model performs the recognition.
func (c *Client) ExtractAttendance(ctx context.Context, doc llm.Document) (llm.AttendanceExtraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract_attendance.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(doc.Text),
		"image_bytes", len(doc.ImageBytes),
	)

	schema := llm.BuildAttendanceJSONSchema()
	var userContent any
	if len(doc.ImageBytes) > 0 {
		userContent = []map[string]any{
			{"type": "text", "text": "Extract every attendance row from this sheet.\n\nReturn ONLY JSON that matches the provided schema."},
			{"type": "image_url", "image_url": map[string]any{"url": dataURL(doc.ImageBytes, doc.MIMEType)}},
		}
	} else {
		userContent = llm.BuildUserPrompt(doc.Text) + "\n\nReturn ONLY JSON that matches the provided schema."
	}
	messages := []map[string]any{
		{"role": "system", "content": llm.BuildAttendanceSystemPrompt()},
		{"role": "user", "content": userContent},
		{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
	}

	content, err := c.complete(ctx, rid, messages)
	if err != nil {
		c.logger.Error("llm.extract_attendance.failed",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.AttendanceExtraction{}, err
	}

	out, err := llm.ParseAttendancePayload(content, c.logger)
	if err != nil {
		c.logger.Error("llm.extract_attendance.payload_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return out, err
	}

	c.logger.Info("llm.extract_attendance.ok",
		"req_id", rid,
		"records", len(out.Records),
		"malformed", len(out.Malformed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// complete runs one chat/completions call and returns the first choice's
// trimmed content.
func (c *Client) complete(ctx context.Context, rid string, messages []map[string]any) ([]byte, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        messages,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices", "req_id", rid, "raw", string(raw))
		return nil, fmt.Errorf("no choices in completion response")
	}
	return []byte(strings.TrimSpace(cc.Choices[0].Message.Content)), nil
}

func dataURL(b []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

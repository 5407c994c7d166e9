package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/homeplay/internal/activity"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// SubmissionTypeInteractive tags submissions produced by an activity session.
const SubmissionTypeInteractive = "interactive"

// Client talks to the homework REST API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

var _ Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type listResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Submissions []json.RawMessage `json:"submissions"`
}

type listEntry struct {
	ChildID flexID `json:"child_id"`
}

type submitResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Submission *wireSubmission `json:"submission"`
}

// FindExistingSubmission lists the homework's submissions and returns the
// first one belonging to childID.
func (c *Client) FindExistingSubmission(ctx context.Context, homeworkID, childID string) (*Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.submissionsURL(homeworkID), nil)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup submissions: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("lookup submissions: HTTP %d", status)
	}
	if err := validateBody("submission_list", body); err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ErrInvalidResponse{Body: body, Err: err}
	}
	if !resp.Success {
		return nil, fmt.Errorf("lookup submissions: %s", messageOr(resp.Message, "backend reported failure"))
	}

	for _, raw := range resp.Submissions {
		var entry listEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, &ErrInvalidResponse{Body: body, Err: err}
		}
		if string(entry.ChildID) == childID {
			rec := c.matchedRecord(raw, homeworkID, childID)
			return &rec, nil
		}
	}
	return nil, nil
}

// matchedRecord decodes the entry that belongs to the child. An entry
// whose other fields are unreadable still yields a record, since its
// existence is what locks the session.
func (c *Client) matchedRecord(raw json.RawMessage, homeworkID, childID string) Record {
	var s wireSubmission
	err := validateBody("submission", raw)
	if err == nil {
		err = json.Unmarshal(raw, &s)
	}
	if err != nil {
		c.logger.Warn("earlier submission is malformed",
			zap.String("homework_id", homeworkID),
			zap.String("child_id", childID),
			zap.Error(err))
		return Record{HomeworkID: homeworkID, ChildID: childID, Answers: activity.AnswerRecord{}}
	}
	return c.toRecord(s, homeworkID)
}

// SubmitResult posts the session result as multipart form data.
func (c *Client) SubmitResult(ctx context.Context, homeworkID, childID string, result Result) (*Record, error) {
	answers := result.Answers
	if answers == nil {
		answers = activity.AnswerRecord{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, &SubmissionError{Message: "could not encode answers", Err: err}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"child_id", childID},
		{"score", strconv.Itoa(result.Score)},
		{"percentage", strconv.Itoa(result.Percentage)},
		{"total_questions", strconv.Itoa(result.TotalQuestions)},
		{"answers_data", string(answersJSON)},
		{"submission_type", SubmissionTypeInteractive},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, &SubmissionError{Message: "could not build request", Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &SubmissionError{Message: "could not build request", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.submitURL(homeworkID), &buf)
	if err != nil {
		return nil, &SubmissionError{Message: "could not build request", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, body, err := c.do(req)
	if err != nil {
		return nil, &SubmissionError{Message: "could not reach the homework service", Err: err}
	}

	var resp submitResponse
	if verr := validateBody("submit_response", body); verr != nil {
		if status < 200 || status > 299 {
			return nil, &SubmissionError{Message: http.StatusText(status), StatusCode: status, Err: verr}
		}
		return nil, &SubmissionError{Message: "unexpected response from the homework service", StatusCode: status, Err: verr}
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SubmissionError{Message: "unexpected response from the homework service", StatusCode: status, Err: err}
	}
	if !resp.Success || status < 200 || status > 299 {
		return nil, &SubmissionError{Message: messageOr(resp.Message, "the homework service rejected the submission"), StatusCode: status}
	}

	if resp.Submission != nil {
		rec := c.toRecord(*resp.Submission, homeworkID)
		return &rec, nil
	}
	return &Record{
		HomeworkID:     homeworkID,
		ChildID:        childID,
		Score:          result.Score,
		Percentage:     result.Percentage,
		TotalQuestions: result.TotalQuestions,
		Answers:        answers.Copy(),
		SubmittedAt:    time.Now(),
	}, nil
}

func (c *Client) submissionsURL(homeworkID string) string {
	return fmt.Sprintf("%s/homework/%s/submissions", c.baseURL, url.PathEscape(homeworkID))
}

func (c *Client) submitURL(homeworkID string) string {
	return fmt.Sprintf("%s/homework/%s/submit", c.baseURL, url.PathEscape(homeworkID))
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("homework api request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.Debug("homework api request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) toRecord(s wireSubmission, homeworkID string) Record {
	rec := Record{
		ID:             string(s.ID),
		HomeworkID:     string(s.HomeworkID),
		ChildID:        string(s.ChildID),
		Score:          s.Score.Int(),
		Percentage:     s.Percentage.Int(),
		TotalQuestions: s.TotalQuestions.Int(),
	}
	if rec.HomeworkID == "" {
		rec.HomeworkID = homeworkID
	}
	if s.SubmittedAt != "" {
		if t, err := time.Parse(time.RFC3339, s.SubmittedAt); err == nil {
			rec.SubmittedAt = t
		}
	}

	answers, err := s.answers()
	if err != nil {
		// Keep the record: its existence is what locks the session.
		c.logger.Warn("discarding unreadable answers_data",
			zap.String("submission_id", rec.ID),
			zap.Error(err))
		answers = activity.AnswerRecord{}
	}
	rec.Answers = answers
	return rec
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

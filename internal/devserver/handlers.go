package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/homeplay/internal/activity"
	"github.com/abhisek/homeplay/internal/store"
)

const maxFormBytes = 1 << 20

const duplicateMessage = "homework already submitted for this child"

// wireSubmission is the JSON shape of a stored submission.
type wireSubmission struct {
	ID             string `json:"id"`
	HomeworkID     string `json:"homework_id"`
	ChildID        string `json:"child_id"`
	Score          int    `json:"score"`
	Percentage     int    `json:"percentage"`
	TotalQuestions int    `json:"total_questions"`
	AnswersData    string `json:"answers_data"`
	SubmissionType string `json:"submission_type,omitempty"`
	SubmittedAt    string `json:"submitted_at"`
}

func toWire(s store.Submission) wireSubmission {
	return wireSubmission{
		ID:             s.ID,
		HomeworkID:     s.HomeworkID,
		ChildID:        s.ChildID,
		Score:          s.Score,
		Percentage:     s.Percentage,
		TotalQuestions: s.TotalQuestions,
		AnswersData:    s.AnswersData,
		SubmissionType: s.SubmissionType,
		SubmittedAt:    s.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

type listResponse struct {
	Success     bool             `json:"success"`
	Submissions []wireSubmission `json:"submissions"`
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	homeworkID := chi.URLParam(r, "homeworkID")

	subs, err := s.repo.ListByHomework(r.Context(), homeworkID)
	if err != nil {
		s.logger.Error("list submissions", zap.String("homework_id", homeworkID), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "could not load submissions")
		return
	}

	resp := listResponse{Success: true, Submissions: make([]wireSubmission, 0, len(subs))}
	for _, sub := range subs {
		resp.Submissions = append(resp.Submissions, toWire(sub))
	}
	writeJSON(w, http.StatusOK, resp)
}

// submitRequest is a decoded submit call, from either form or JSON input.
type submitRequest struct {
	ChildID        string
	Score          int
	Percentage     int
	TotalQuestions int
	Answers        activity.AnswerRecord
	SubmissionType string
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	homeworkID := chi.URLParam(r, "homeworkID")

	req, err := decodeSubmit(w, r)
	if err == nil {
		err = req.validate()
	}
	if err != nil {
		s.metrics.submission(resultInvalid)
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	// The unique index still catches a submit racing this check.
	existing, err := s.repo.FindByChild(r.Context(), homeworkID, req.ChildID)
	if err != nil {
		s.metrics.submission(resultError)
		s.logger.Error("look up submission",
			zap.String("homework_id", homeworkID),
			zap.String("child_id", req.ChildID),
			zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "could not save submission")
		return
	}
	if existing != nil {
		s.metrics.submission(resultDuplicate)
		wire := toWire(*existing)
		writeJSON(w, http.StatusConflict, envelope{
			Message:    duplicateMessage,
			Submission: &wire,
		})
		return
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		s.metrics.submission(resultInvalid)
		writeFailure(w, http.StatusBadRequest, "answers could not be encoded")
		return
	}

	sub := &store.Submission{
		HomeworkID:     homeworkID,
		ChildID:        req.ChildID,
		Score:          req.Score,
		Percentage:     req.Percentage,
		TotalQuestions: req.TotalQuestions,
		AnswersData:    string(answersJSON),
		SubmissionType: req.SubmissionType,
	}
	switch err := s.repo.Create(r.Context(), sub); {
	case errors.Is(err, store.ErrDuplicateSubmission):
		s.metrics.submission(resultDuplicate)
		writeFailure(w, http.StatusConflict, duplicateMessage)
		return
	case err != nil:
		s.metrics.submission(resultError)
		s.logger.Error("store submission",
			zap.String("homework_id", homeworkID),
			zap.String("child_id", req.ChildID),
			zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "could not save submission")
		return
	}

	s.metrics.submission(resultCreated)
	s.logger.Info("submission stored",
		zap.String("homework_id", homeworkID),
		zap.String("child_id", req.ChildID),
		zap.String("submission_id", sub.ID),
		zap.Int("score", sub.Score))

	wire := toWire(*sub)
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Homework submitted", Submission: &wire})
}

func decodeSubmit(w http.ResponseWriter, r *http.Request) (submitRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeSubmitJSON(w, r)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return submitRequest{}, fmt.Errorf("malformed form: %w", err)
	}

	req := submitRequest{
		ChildID:        strings.TrimSpace(r.FormValue("child_id")),
		SubmissionType: r.FormValue("submission_type"),
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"score", &req.Score},
		{"percentage", &req.Percentage},
		{"total_questions", &req.TotalQuestions},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(f.name)))
		if err != nil {
			return submitRequest{}, fmt.Errorf("%s must be an integer", f.name)
		}
		*f.dst = v
	}

	req.Answers, err = activity.ParseAnswerRecord([]byte(r.FormValue("answers_data")))
	if err != nil {
		return submitRequest{}, errors.New("answers_data must be a JSON object")
	}
	return req, nil
}

type submitJSON struct {
	ChildID        json.RawMessage       `json:"child_id"`
	Score          int                   `json:"score"`
	Percentage     int                   `json:"percentage"`
	TotalQuestions int                   `json:"total_questions"`
	Answers        activity.AnswerRecord `json:"answers"`
	SubmissionType string                `json:"submission_type"`
}

func decodeSubmitJSON(w http.ResponseWriter, r *http.Request) (submitRequest, error) {
	var body submitJSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := dec.Decode(&body); err != nil {
		return submitRequest{}, fmt.Errorf("malformed JSON: %w", err)
	}

	childID, err := rawID(body.ChildID)
	if err != nil {
		return submitRequest{}, err
	}
	answers := body.Answers
	if answers == nil {
		answers = activity.AnswerRecord{}
	}
	return submitRequest{
		ChildID:        childID,
		Score:          body.Score,
		Percentage:     body.Percentage,
		TotalQuestions: body.TotalQuestions,
		Answers:        answers,
		SubmissionType: body.SubmissionType,
	}, nil
}

// rawID reads an identifier sent as either a JSON string or number.
func rawID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.New("child_id must be a string or number")
	}
	return n.String(), nil
}

func (req submitRequest) validate() error {
	switch {
	case req.ChildID == "":
		return errors.New("child_id is required")
	case req.TotalQuestions < 0:
		return errors.New("total_questions must not be negative")
	case req.Score < 0 || req.Score > req.TotalQuestions:
		return errors.New("score must be between 0 and total_questions")
	case req.Percentage < 0 || req.Percentage > 100:
		return errors.New("percentage must be between 0 and 100")
	}
	return nil
}

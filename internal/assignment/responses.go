package assignment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidResponse marks a submission that cannot be stored
var ErrInvalidResponse = errors.New("invalid response")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Response is one respondent's submission for a booklet
type Response struct {
	UserID    string            `validate:"required"`
	BookletID int               `validate:"gte=0"`
	Answers   map[string]string `validate:"min=1,dive,keys,required,endkeys"` // question id -> answer
	TS        int64             // client timestamp as sent
}

// Answer is one stored answer
type Answer struct {
	UserID    string
	QID       string
	BookletID int
	Answer    string
	TS        int64
}

type responseWire struct {
	UserID    json.RawMessage            `json:"user_id"`
	Responses map[string]json.RawMessage `json:"responses"`
	BookletID *json.Number               `json:"booklet_id"`
	TS        *json.Number               `json:"ts"`
}

// ParseResponses reads a single submission object or a list of them.
// Every submission is decoded and validated on its own; the returned
// errors line up with the returned responses, nil for valid ones.
func ParseResponses(r io.Reader) ([]Response, []error, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	trimmed := bytes.TrimSpace(data)
	var elems []json.RawMessage
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, nil, fmt.Errorf("failed to decode responses: %w", err)
		}
	case len(trimmed) > 0 && trimmed[0] == '{':
		elems = []json.RawMessage{trimmed}
	default:
		return nil, nil, fmt.Errorf("expected a response object or a list of them")
	}

	responses := make([]Response, len(elems))
	errs := make([]error, len(elems))
	for i, raw := range elems {
		responses[i], errs[i] = decodeResponse(raw)
	}
	return responses, errs, nil
}

func decodeResponse(raw json.RawMessage) (Response, error) {
	var w responseWire
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if w.BookletID == nil {
		return Response{}, fmt.Errorf("%w: booklet_id is missing", ErrInvalidResponse)
	}
	bid, err := w.BookletID.Int64()
	if err != nil {
		return Response{}, fmt.Errorf("%w: booklet_id %s is not an integer", ErrInvalidResponse, *w.BookletID)
	}

	resp := Response{
		UserID:    scalarText(w.UserID),
		BookletID: int(bid),
		Answers:   make(map[string]string, len(w.Responses)),
	}
	for qid, ans := range w.Responses {
		resp.Answers[qid] = scalarText(ans)
	}
	if w.TS != nil {
		if resp.TS, err = timestamp(*w.TS); err != nil {
			return Response{}, fmt.Errorf("%w: ts %s: %v", ErrInvalidResponse, *w.TS, err)
		}
	}

	if err := validate.Struct(resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp, nil
}

// scalarText returns strings unquoted and any other JSON value as its
// text. null yields "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

func timestamp(n json.Number) (int64, error) {
	if ts, err := n.Int64(); err == nil {
		return ts, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not a number")
	}
	return int64(f), nil
}

// SaveResponse stores every answer of resp. A later submission for the
// same user and question replaces the earlier one.
func (s *Store) SaveResponse(ctx context.Context, resp Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qids := make([]string, 0, len(resp.Answers))
	for qid := range resp.Answers {
		qids = append(qids, qid)
	}
	sort.Strings(qids)

	for _, qid := range qids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO responses (user_id, qid, booklet_id, answer, ts) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, qid) DO UPDATE SET
				booklet_id = excluded.booklet_id, answer = excluded.answer, ts = excluded.ts`,
			resp.UserID, qid, resp.BookletID, resp.Answers[qid], resp.TS); err != nil {
			return fmt.Errorf("failed to store answer %s: %w", qid, err)
		}
	}

	return tx.Commit()
}

// Answers returns the stored answers of userID ordered by question id
func (s *Store) Answers(ctx context.Context, userID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, qid, booklet_id, answer, ts FROM responses WHERE user_id = ? ORDER BY qid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.UserID, &a.QID, &a.BookletID, &a.Answer, &a.TS); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-engine/internal/logger"
	"github.com/jonathan/interview-engine/internal/session"
	"github.com/jonathan/interview-engine/internal/types"
)

var validate = validator.New()

// CreateSessionRequest is the payload for POST /sessions
type CreateSessionRequest struct {
	CandidateID   string `json:"candidate_id" validate:"required"`
	MaxTurns      int    `json:"max_turns,omitempty" validate:"omitempty,min=1,max=100"`
	PerArmCap     int    `json:"per_arm_cap,omitempty" validate:"omitempty,min=1"`
	AnswerTimeout string `json:"answer_timeout,omitempty"`
}

// SubmitAnswerRequest is the payload for POST /sessions/{id}/answers.
// Exactly one of transcript or audio is expected; audio arrives base64
// encoded WAV.
type SubmitAnswerRequest struct {
	QuestionID  string   `json:"question_id" validate:"required"`
	Transcript  string   `json:"transcript,omitempty"`
	AudioBase64 string   `json:"audio_base64,omitempty"`
	Delivery    *float64 `json:"delivery,omitempty" validate:"omitempty,min=0,max=1"`
}

func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func (s *Server) sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "not a valid session ID"}
	}
	return id, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var cfg *session.Config
	if req.MaxTurns != 0 || req.PerArmCap != 0 || req.AnswerTimeout != "" {
		override := s.engine.Defaults()
		if req.MaxTurns != 0 {
			override.MaxTurns = req.MaxTurns
		}
		if req.PerArmCap != 0 {
			override.PerArmCap = req.PerArmCap
		}
		if req.AnswerTimeout != "" {
			d, err := time.ParseDuration(req.AnswerTimeout)
			if err != nil {
				s.errorResponse(w, http.StatusBadRequest, "answer_timeout is not a valid duration")
				return
			}
			override.AnswerTimeout = d
		}
		cfg = &override
	}

	snap, err := s.engine.CreateSession(r.Context(), req.CandidateID, cfg)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, snap)
}

func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	question, err := s.engine.NextQuestion(r.Context(), id)
	if err != nil {
		s.publishStateIfEnded(id)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.events.Publish(id, "question", map[string]string{
		"question_id": question.ID,
		"prompt":      question.Prompt,
		"arm":         question.Arm().String(),
	})
	s.jsonResponse(w, http.StatusOK, question)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req SubmitAnswerRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	input := session.AnswerInput{Transcript: req.Transcript, Delivery: req.Delivery}
	if req.AudioBase64 != "" {
		audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "audio_base64 is not valid base64")
			return
		}
		input.Audio = audio
	}

	turn, err := s.engine.SubmitAnswer(r.Context(), id, req.QuestionID, input)
	if err != nil {
		s.publishStateIfEnded(id)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.log.Info("turn recorded",
		zap.String("session_id", id.String()),
		zap.String("question_id", turn.QuestionID),
		zap.String("transcript", logger.TruncateForLog(turn.Answer.Transcript, 80)))
	s.events.Publish(id, "turn", turn)
	s.publishStateIfEnded(id)
	s.jsonResponse(w, http.StatusOK, turn)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	snap, err := s.engine.GetSession(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	report, err := s.engine.GetReport(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := s.engine.CancelSession(r.Context(), id); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.events.Publish(id, "session_ended", map[string]string{"state": string(types.StateAborted)})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListArms(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.ArmSnapshots())
}

// handleSessionEvents streams session turn events over SSE until the
// client disconnects.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if _, err := s.engine.GetSession(id); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub := s.events.Subscribe(id)
	defer s.events.Unsubscribe(id, sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := sse.WriteEvent(ev.Name, ev.Data); err != nil {
				return
			}
		}
	}
}

// publishStateIfEnded emits a terminal-state event when a session has
// just finished, so stream subscribers see the close.
func (s *Server) publishStateIfEnded(id uuid.UUID) {
	snap, err := s.engine.GetSession(id)
	if err != nil || !snap.State.Terminal() {
		return
	}
	s.events.Publish(id, "session_ended", map[string]string{"state": string(snap.State)})
}

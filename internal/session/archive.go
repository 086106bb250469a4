package session

import (
	"encoding/json"
	"fmt"
)

// ArchiveTranscript stores t at the front of chatHistory, replacing any older
// transcript for the same document. Empty transcripts are ignored.
func (s *Store) ArchiveTranscript(t Transcript) error {
	if len(t.Messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.CapturedAt.IsZero() {
		t.CapturedAt = s.now()
	}
	history, err := s.history()
	if err != nil {
		return err
	}
	out := make([]Transcript, 0, MaxHistory)
	out = append(out, t)
	for _, h := range history {
		if h.DocumentID == t.DocumentID {
			continue
		}
		if len(out) == MaxHistory {
			break
		}
		out = append(out, h)
	}
	return s.writeJSON(KeyChatHistory, out)
}

// History returns archived transcripts, newest first.
func (s *Store) History() ([]Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history()
}

func (s *Store) history() ([]Transcript, error) {
	raw, ok, err := s.durable.Get(KeyChatHistory)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var out []Transcript
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	return out, nil
}

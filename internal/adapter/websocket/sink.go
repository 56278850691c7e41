package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/domain"
)

// sink implements domain.Renderer and domain.Notifier by encoding every call as
// a JSON frame for the client.
type sink struct {
	writer   *clientWriter
	metrics  *metrics.WebSocketMetrics
	toastTTL time.Duration
}

func newSink(writer *clientWriter, wsMetrics *metrics.WebSocketMetrics, toastTTL time.Duration) *sink {
	return &sink{writer: writer, metrics: wsMetrics, toastTTL: toastTTL}
}

func (s *sink) RenderDeck(view domain.DeckView) {
	s.emit(msgRender, view)
}

func (s *sink) DragCard(feedback domain.DragFeedback) {
	s.emit(msgDrag, feedback)
}

func (s *sink) ResetCard() {
	s.emit(msgResetCard, nil)
}

func (s *sink) AnimateExit(exit domain.ExitAnimation) {
	s.emit(msgExit, exitPayload{ExitAnimation: exit, DurationMs: exit.Duration.Milliseconds()})
}

func (s *sink) ShowPhoto(profileID string, index int, image string) {
	s.emit(msgPhoto, photoPayload{ProfileID: profileID, Index: index, Image: image})
}

func (s *sink) Highlight(profileID string, on bool) {
	s.emit(msgHighlight, highlightPayload{ProfileID: profileID, On: on})
}

// Notify sends a toast. The client shows one toast at a time, so a newer one
// replaces whatever is on screen.
func (s *sink) Notify(message string) {
	s.emit(msgToast, toastPayload{Message: message, TTLMs: s.toastTTL.Milliseconds()})
}

func (s *sink) emit(msgType string, data any) {
	frame, err := json.Marshal(envelope{Type: msgType, Data: data})
	if err != nil {
		slog.Error("Failed to marshal client message", "type", msgType, "error", err)
		return
	}

	if err := s.writer.send(frame); err != nil {
		if errors.Is(err, errBufferFull) {
			slog.Warn("Evicting slow client", "type", msgType)
			s.writer.evict()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.MessagesSent.WithLabelValues(msgType).Inc()
	}
}

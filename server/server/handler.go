package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
)

const maxBodyBytes = 1 << 20

func (s *Server) eventStreamHandler(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusServiceUnavailable, "event stream disabled")
		return
	}
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"localhost:*", "192.168.*.*:*"}})
	if err != nil {
		s.logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.logger.Info("accepted websocket request", "remote", r.RemoteAddr)
	defer s.logger.Info("closing websocket connection", "remote", r.RemoteAddr)
	defer c.Close(websocket.StatusNormalClosure, "handler exits")

	subscriber := getSubscriberID(r.RemoteAddr)
	events, err := s.hub.Subscribe(subscriber)
	if err != nil {
		s.logger.Debug("subscribe failed", "subscriber", subscriber, "error", err)
		c.Close(websocket.StatusPolicyViolation, "already subscribed")
		return
	}
	defer func() {
		if err := s.hub.Unsubscribe(subscriber); err != nil {
			s.logger.Debug("unsubscribe failed", "subscriber", subscriber, "error", err)
		}
	}()

	ctx := c.CloseRead(r.Context())
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(ctx, c, e); err != nil {
				s.logger.Warn("write event failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, e emission.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	return wsjson.Write(ctx, c, e)
}

func (s *Server) decodeHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	var frame taggedFrame
	if err := json.Unmarshal(body, &frame); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed frame")
		return
	}

	capture, err := decodeFrame(frame, s.store.ListAll())
	if err != nil {
		s.logger.Info("undecodable frame", "collector", frame.CollectorID, "samples", len(frame.Frame.Data), "error", err)
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Debug("decoded frame", "collector", capture.CollectorID,
		"header", capture.Header, "command", capture.Command, "key", capture.KeyName)
	if s.hub != nil {
		s.hub.Publish(emission.NewCaptureEvent(capture, s.now()))
	}
	s.writeJSON(w, http.StatusOK, capture)
}

func (s *Server) emitHandler(w http.ResponseWriter, r *http.Request) {
	var req emitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed emit request")
		return
	}

	switch {
	case req.Repeat:
		s.writeJSON(w, http.StatusOK, s.coordinator.EmitRepeat(s.transmitter))
		return
	case req.isRaw():
		s.writeJSON(w, http.StatusOK, s.coordinator.EmitRaw(req.Frequency, ir.Pattern{Timings: req.Pattern}, s.transmitter))
		return
	case req.isCustom():
		if !req.hasCode() {
			s.writeError(w, http.StatusBadRequest, errMissingCode.Error())
			return
		}
		protocol, header, err := req.custom()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		code, err := req.code()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, s.coordinator.EmitCustom(protocol, header, code, s.transmitter))
		return
	}

	cfg := s.store.GetDefault()
	if req.ConfigID != "" {
		var ok bool
		if cfg, ok = s.store.Get(req.ConfigID); !ok {
			s.writeError(w, http.StatusNotFound, "Config not found")
			return
		}
	}

	if req.hasCode() {
		code, err := req.code()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, s.coordinator.EmitByCode(cfg, code, s.transmitter))
		return
	}
	if req.KeyName == "" {
		s.writeError(w, http.StatusBadRequest, errMissingKey.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.coordinator.Emit(cfg, req.KeyName, s.transmitter))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: s.now().UnixMilli()})
}

func isClientGone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package emission

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remote"
)

// Coordinator resolves keys of a configuration and drives a Transmitter.
// It keeps no per-call state; concurrent calls are independent.
type Coordinator struct {
	registry *ir.Registry
	logger   *slog.Logger
	hub      *Hub
	now      func() time.Time
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithHub publishes every result on h.
func WithHub(h *Hub) Option {
	return func(c *Coordinator) { c.hub = h }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator builds a coordinator over registry.
func NewCoordinator(registry *ir.Registry, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{registry: registry, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Emit sends the key called keyName.
func (c *Coordinator) Emit(cfg remote.Config, keyName string, tx Transmitter) Result {
	key, ok := cfg.FindKeyByName(keyName)
	if !ok {
		c.logger.Warn("key not found", "config", cfg.ID, "key", keyName)
		return c.finish(Result{Success: false, KeyLabel: keyName, Message: MessageKeyNotFound + ": " + keyName})
	}
	return c.emitKey(cfg, key, tx)
}

// EmitByCode sends code. Codes missing from the catalog are sent as an
// unnamed function key labelled with the hex code.
func (c *Coordinator) EmitByCode(cfg remote.Config, code uint16, tx Transmitter) Result {
	key, ok := cfg.FindKeyByCode(code)
	if !ok {
		key = remote.Key{Code: code, Label: fmt.Sprintf("0x%04X", code), Category: remote.CategoryFunction}
	}
	return c.emitKey(cfg, key, tx)
}

// EmitCustom sends code with an ad-hoc protocol and header, without a stored
// configuration.
func (c *Coordinator) EmitCustom(protocol ir.ProtocolID, header, code uint16, tx Transmitter) Result {
	cfg := remote.Config{ID: "custom", Protocol: protocol, Header: header}
	key := remote.Key{Code: code, Label: fmt.Sprintf("0x%04X", code), Category: remote.CategoryFunction}
	return c.emitKey(cfg, key, tx)
}

// EmitRaw plays pattern at frequencyHz as given. Patterns no emitter can play
// are rejected before the transmitter is touched.
func (c *Coordinator) EmitRaw(frequencyHz uint32, pattern ir.Pattern, tx Transmitter) Result {
	const label = "RAW"
	if frequencyHz == 0 {
		return c.finish(Result{KeyLabel: label, Message: fmt.Sprintf("%v: carrier frequency is zero", ir.ErrInvalidPattern)})
	}
	if err := pattern.Validate(); err != nil {
		return c.finish(Result{KeyLabel: label, Message: err.Error()})
	}
	if !tx.HasEmitter() {
		return c.finish(Result{KeyLabel: label, Message: MessageNoEmitter})
	}
	pattern.CarrierHz = frequencyHz
	if err := send(tx, frequencyHz, pattern); err != nil {
		c.logger.Warn("raw emit failed", "error", err)
		return c.finish(Result{KeyLabel: label, Message: err.Error()})
	}
	return c.finish(Result{
		Success:  true,
		KeyLabel: label,
		Message:  fmt.Sprintf("sent %d elements at %d Hz", pattern.Len(), frequencyHz),
	})
}

// EmitRepeat sends the NEC repeat frame at the nominal carrier.
func (c *Coordinator) EmitRepeat(tx Transmitter) Result {
	const label = "REPEAT"
	if !tx.HasEmitter() {
		return c.finish(Result{KeyLabel: label, Message: MessageNoEmitter})
	}
	if err := send(tx, ir.NECCarrierHz, ir.EncodeRepeat()); err != nil {
		c.logger.Warn("repeat emit failed", "error", err)
		return c.finish(Result{KeyLabel: label, Message: err.Error()})
	}
	return c.finish(Result{Success: true, KeyLabel: label, Message: fmt.Sprintf("repeat sent at %d Hz", ir.NECCarrierHz)})
}

func (c *Coordinator) emitKey(cfg remote.Config, key remote.Key, tx Transmitter) Result {
	codec, err := c.registry.Codec(cfg.Protocol)
	if err != nil {
		return c.finish(Result{KeyLabel: key.Label, Message: err.Error()})
	}
	if !tx.HasEmitter() {
		return c.finish(Result{KeyLabel: key.Label, Message: MessageNoEmitter})
	}

	command := key.Command()
	pattern := codec.Encode(cfg.Header, command)
	frequency, err := c.registry.BestCarrierFrequency(cfg.Protocol, tx.SupportedFrequencyRanges())
	if err != nil {
		return c.finish(Result{KeyLabel: key.Label, Message: err.Error()})
	}

	c.logger.Debug("emitting key",
		"config", cfg.ID,
		"key", key.Name,
		"code", key.FormattedCode(),
		"frequency", frequency,
		"elements", pattern.Len(),
	)
	if err := send(tx, frequency, pattern); err != nil {
		c.logger.Warn("emit failed", "key", key.Name, "error", err)
		return c.finish(Result{KeyLabel: key.Label, Message: err.Error()})
	}

	return c.finish(Result{
		Success:  true,
		KeyLabel: key.Label,
		Message: fmt.Sprintf("sent %s at %d Hz (header 0x%04X, command 0x%02X)",
			key.Label, frequency, cfg.Header, command),
	})
}

// send converts a panicking transmitter into an error.
func send(tx Transmitter, frequency uint32, pattern ir.Pattern) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transmitter panic: %v", r)
		}
	}()
	return tx.Send(frequency, pattern)
}

func (c *Coordinator) finish(r Result) Result {
	r.Timestamp = c.now()
	if r.Success {
		c.logger.Info("emit success", "key", r.KeyLabel)
	}
	if c.hub != nil {
		c.hub.Publish(NewEmitEvent(r))
	}
	return r
}

package transmit

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/logging"
	"github.com/derktes/ir-remote/remote"
)

// scriptedPort replays canned replies and records what was written.
type scriptedPort struct {
	mu      sync.Mutex
	replies *strings.Reader
	written bytes.Buffer
	closed  bool
}

func newScriptedPort(replies ...string) *scriptedPort {
	return &scriptedPort{replies: strings.NewReader(strings.Join(replies, ""))}
}

func (p *scriptedPort) Read(b []byte) (int, error) { return p.replies.Read(b) }

func (p *scriptedPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

var testPattern = ir.Pattern{CarrierHz: ir.NECCarrierHz, Timings: []int{9000, 2250, 560}}

func TestAbsent(t *testing.T) {
	var tx Absent
	if tx.HasEmitter() {
		t.Fatal("absent transmitter reports an emitter")
	}
	if err := tx.Send(38000, testPattern); !errors.Is(err, ErrNoEmitter) {
		t.Fatalf("Send err = %v, want ErrNoEmitter", err)
	}
}

func TestLoopbackRecordsSends(t *testing.T) {
	ranges := []ir.FrequencyRange{{MinHz: 30000, MaxHz: 40000}}
	tx := NewLoopback(ranges, logging.Discard())
	if !tx.HasEmitter() {
		t.Fatal("loopback has no emitter")
	}

	p := ir.Pattern{CarrierHz: 38000, Timings: []int{1, 2, 3}}
	if err := tx.Send(36000, p); err != nil {
		t.Fatalf("Send: %v", err)
	}
	p.Timings[0] = 99

	sent := tx.Sent()
	if len(sent) != 1 || sent[0].FrequencyHz != 36000 || sent[0].Pattern.Timings[0] != 1 {
		t.Fatalf("Sent = %+v", sent)
	}
	got := tx.SupportedFrequencyRanges()
	got[0].MinHz = 1
	if tx.SupportedFrequencyRanges()[0].MinHz != 30000 {
		t.Fatal("ranges share storage with caller")
	}
}

func TestSerialSendWritesJSONLine(t *testing.T) {
	port := newScriptedPort("OK\r\n")
	tx := NewSerial(port, nil, logging.Discard())

	if err := tx.Send(38000, testPattern); err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := `{"frequency":38000,"pattern":[9000,2250,560]}` + "\n"
	if got := port.written.String(); got != want {
		t.Fatalf("wrote %q, want %q", got, want)
	}
}

func TestSerialAcknowledgements(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  error
	}{
		{"ok", "OK\n", nil},
		{"ok without newline", "OK", nil},
		{"rejected", "ERR frequency out of range\n", ErrRejected},
		{"bare err", "ERR\n", ErrRejected},
		{"garbage", "WHAT\n", ErrUnexpectedReply},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := NewSerial(newScriptedPort(tc.reply), nil, logging.Discard())
			err := tx.Send(38000, testPattern)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Send: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Send err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSerialSilentPort(t *testing.T) {
	tx := NewSerial(newScriptedPort(), nil, logging.Discard())
	if err := tx.Send(38000, testPattern); err == nil {
		t.Fatal("Send succeeded without acknowledgement")
	}
}

var errReadTimeout = errors.New("read timeout")

// laggingPort answers each write with the next scripted reply and reports a
// timeout when nothing is queued. Flush drops queued input like the driver.
type laggingPort struct {
	replies []string
	queued  []byte
	flushes int
}

func (p *laggingPort) Write(b []byte) (int, error) {
	if len(p.replies) > 0 {
		p.queued = append(p.queued, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *laggingPort) Read(b []byte) (int, error) {
	if len(p.queued) == 0 {
		return 0, errReadTimeout
	}
	n := copy(b, p.queued)
	p.queued = p.queued[n:]
	return n, nil
}

func (p *laggingPort) Flush() error {
	p.flushes++
	p.queued = nil
	return nil
}

func (p *laggingPort) Close() error { return nil }

func TestSerialIgnoresLateAcknowledgement(t *testing.T) {
	port := &laggingPort{replies: []string{"", "OK\n"}}
	tx := NewSerial(port, nil, logging.Discard())

	if err := tx.Send(38000, testPattern); !errors.Is(err, errReadTimeout) {
		t.Fatalf("first Send err = %v, want timeout", err)
	}
	port.queued = append(port.queued, "ERR late\n"...)

	if err := tx.Send(38000, testPattern); err != nil {
		t.Fatalf("second Send read the late reply: %v", err)
	}
	if port.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", port.flushes)
	}
}

func TestSerialDropsBufferedRepliesAfterGarbage(t *testing.T) {
	tx := NewSerial(newScriptedPort("WHAT\nOK\n", "ERR stale\n"), nil, logging.Discard())
	if err := tx.Send(38000, testPattern); !errors.Is(err, ErrUnexpectedReply) {
		t.Fatalf("first Send err = %v", err)
	}
	// The buffered "OK" and the port's queued bytes belong to no command.
	if err := tx.Send(38000, testPattern); err == nil {
		t.Fatal("second Send accepted a buffered reply")
	}
}

func TestSerialClose(t *testing.T) {
	port := newScriptedPort()
	tx := NewSerial(port, nil, logging.Discard())
	if err := tx.Close(); err != nil {
		t.Fatal(err)
	}
	if !port.closed {
		t.Fatal("port not closed")
	}
}

func TestOpen(t *testing.T) {
	logger := logging.Discard()
	for _, kind := range []string{"", "none", "NONE"} {
		tx, err := Open(kind, "", 0, nil, logger)
		if err != nil || tx.HasEmitter() {
			t.Fatalf("Open(%q) = %v, %v", kind, tx, err)
		}
	}
	tx, err := Open("loopback", "", 0, nil, logger)
	if err != nil || !tx.HasEmitter() {
		t.Fatalf("Open(loopback) = %v, %v", tx, err)
	}
	if _, err := Open("serial", "", 9600, nil, logger); err == nil {
		t.Fatal("serial without port accepted")
	}
	if _, err := Open("laser", "", 0, nil, logger); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestCoordinatorOverSerial(t *testing.T) {
	port := newScriptedPort("OK\n")
	tx := NewSerial(port, []ir.FrequencyRange{{MinHz: 36000, MaxHz: 36000}}, logging.Discard())
	coord := emission.NewCoordinator(ir.DefaultRegistry(), logging.Discard())

	res := coord.Emit(remote.Builtin(), "KEY_POWER", tx)
	if !res.Success {
		t.Fatalf("Emit failed: %s", res.Message)
	}
	if !strings.HasPrefix(port.written.String(), `{"frequency":36000,"pattern":[9000,4500,`) {
		t.Fatalf("wrote %q", port.written.String())
	}
}

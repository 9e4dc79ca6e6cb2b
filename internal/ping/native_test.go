package ping

import (
	"encoding/binary"
	"testing"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

func echoReply(t *testing.T, id, seq int) []byte {
	t.Helper()
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("payload")},
	}
	b, err := msg.Marshal(nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// fragNeeded builds a Type 3 Code 4 message quoting an echo request.
func fragNeeded(mtu, id int) []byte {
	b := make([]byte, 8+20+8)
	b[0], b[1] = 3, 4
	binary.BigEndian.PutUint16(b[6:8], uint16(mtu))
	b[8] = 0x45 // IPv4, IHL 5
	echo := b[28:]
	echo[0] = byte(ipv4.ICMPTypeEcho)
	binary.BigEndian.PutUint16(echo[4:6], uint16(id))
	return b
}

func TestEchoRequest_PayloadSize(t *testing.T) {
	for _, size := range []int{1, 56, 1472, 3000} {
		b, err := EchoRequest(0x1234, 7, size)
		if err != nil {
			t.Fatalf("EchoRequest(%d) error: %v", size, err)
		}
		if len(b) != icmpEchoHeaderLen+size {
			t.Errorf("EchoRequest(%d) length = %d, want %d", size, len(b), icmpEchoHeaderLen+size)
		}

		msg, err := icmp.ParseMessage(1, b)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if msg.Type != ipv4.ICMPTypeEcho {
			t.Errorf("type = %v, want echo", msg.Type)
		}
		echo := msg.Body.(*icmp.Echo)
		if echo.ID != 0x1234 || echo.Seq != 7 {
			t.Errorf("id/seq = %d/%d, want %d/7", echo.ID, echo.Seq, 0x1234)
		}
	}
}

func TestMaxPayload(t *testing.T) {
	if MaxPayload != 65507 {
		t.Errorf("MaxPayload = %d, want 65507", MaxPayload)
	}
}

func TestClassifyReply(t *testing.T) {
	pending := map[int]bool{1: true, 2: true}

	tests := []struct {
		name     string
		data     []byte
		expected replyKind
	}{
		{name: "matching echo reply", data: echoReply(t, 42, 2), expected: replyEcho},
		{name: "other identifier", data: echoReply(t, 43, 2), expected: replyOther},
		{name: "unknown sequence", data: echoReply(t, 42, 9), expected: replyOther},
		{name: "fragmentation needed for our echo", data: fragNeeded(1400, 42), expected: replyFragNeeded},
		{name: "fragmentation needed for another process", data: fragNeeded(1400, 7), expected: replyOther},
		{name: "too short", data: []byte{0, 0, 0}, expected: replyOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyReply(tt.data, 42, pending); got != tt.expected {
				t.Errorf("classifyReply() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyReply_IgnoresOwnEchoRequest(t *testing.T) {
	b, err := EchoRequest(42, 1, 16)
	if err != nil {
		t.Fatalf("EchoRequest: %v", err)
	}
	if got := classifyReply(b, 42, map[int]bool{1: true}); got != replyOther {
		t.Errorf("classifyReply(echo request) = %v, want replyOther", got)
	}
}

func TestParseMTUFromICMP(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int
		ok       bool
	}{
		{
			name:     "valid MTU 1400",
			data:     []byte{3, 4, 0, 0, 0, 0, 0x05, 0x78},
			expected: 1400,
			ok:       true,
		},
		{
			name:     "valid MTU 1500",
			data:     []byte{3, 4, 0, 0, 0, 0, 0x05, 0xDC},
			expected: 1500,
			ok:       true,
		},
		{
			name:     "pre RFC 1191 router",
			data:     []byte{3, 4, 0, 0, 0, 0, 0, 0},
			expected: 0,
			ok:       false,
		},
		{
			name:     "too short",
			data:     []byte{3, 4, 0, 0},
			expected: 0,
			ok:       false,
		},
		{
			name:     "wrong type",
			data:     []byte{11, 0, 0, 0, 0, 0, 0x05, 0x78},
			expected: 0,
			ok:       false,
		},
		{
			name:     "wrong code",
			data:     []byte{3, 0, 0, 0, 0, 0, 0x05, 0x78},
			expected: 0,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mtu, ok := ParseMTUFromICMP(tt.data)
			if ok != tt.ok {
				t.Errorf("ParseMTUFromICMP() ok = %v, want %v", ok, tt.ok)
			}
			if mtu != tt.expected {
				t.Errorf("ParseMTUFromICMP() mtu = %d, want %d", mtu, tt.expected)
			}
		})
	}
}

func TestResolveIPv4(t *testing.T) {
	ip, err := resolveIPv4("192.0.2.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip.String() != "192.0.2.10" {
		t.Errorf("got %s", ip)
	}

	if _, err := resolveIPv4("2001:db8::1"); err == nil {
		t.Error("expected error for IPv6 literal")
	}
}

func TestNativeProber_NextSeqWraps(t *testing.T) {
	p := &NativeProber{seq: 0xfffe}
	if got := p.nextSeq(); got != 0xffff {
		t.Errorf("nextSeq() = %d, want %d", got, 0xffff)
	}
	if got := p.nextSeq(); got != 0 {
		t.Errorf("nextSeq() = %d, want 0", got)
	}
}

package ping

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	// icmpEchoHeaderLen is the size of an ICMP echo header.
	icmpEchoHeaderLen = 8

	// MaxPayload is the largest echo payload that fits in an IPv4 datagram.
	MaxPayload = 65535 - ipv4.HeaderLen - icmpEchoHeaderLen

	// DefaultReplyTimeout is how long to wait for a reply after the last
	// echo request.
	DefaultReplyTimeout = time.Second
)

// replyKind classifies an ICMP message read from the socket.
type replyKind int

const (
	replyOther replyKind = iota
	replyEcho
	replyFragNeeded
)

// NativeProber sends ICMP echo requests with the Don't Fragment bit set from
// a raw socket. It needs root or CAP_NET_RAW.
type NativeProber struct {
	Interval     time.Duration
	ReplyTimeout time.Duration

	id     int
	seq    int
	logger zerolog.Logger
}

// NewNativeProber creates a NativeProber. It fails on platforms where the
// Don't Fragment socket option is not wired.
func NewNativeProber(logger zerolog.Logger) (*NativeProber, error) {
	if !nativeSupported {
		return nil, fmt.Errorf("%w: native mode is only available on linux", ErrUnsupportedMode)
	}
	return &NativeProber{
		Interval:     DefaultInterval,
		ReplyTimeout: DefaultReplyTimeout,
		id:           os.Getpid() & 0xffff,
		logger:       logger,
	}, nil
}

// Probe sends req.Count echo requests of req.Size payload bytes and reports
// whether any reply came back.
func (p *NativeProber) Probe(ctx context.Context, req Request) (Outcome, error) {
	start := time.Now()
	out := Outcome{}
	done := func() (Outcome, error) {
		out.Duration = time.Since(start)
		return out, nil
	}

	if req.Size > MaxPayload {
		return done()
	}

	dst, err := resolveIPv4(req.Address)
	if err != nil {
		p.logger.Debug().Err(err).Str("address", req.Address).Msg("resolve failed")
		return done()
	}

	conn, err := openDontFragment()
	if err != nil {
		return out, err
	}
	defer conn.Close()

	// Closing the socket unblocks a pending read on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	pending := make(map[int]bool, req.Count)
	for i := 0; i < req.Count; i++ {
		seq := p.nextSeq()
		msg, err := EchoRequest(p.id, seq, req.Size)
		if err != nil {
			return out, err
		}

		if _, err := conn.WriteTo(msg, &net.IPAddr{IP: dst}); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			// EMSGSIZE when the packet exceeds the known path MTU.
			p.logger.Debug().Err(err).Int("size", req.Size).Msg("send failed")
			return done()
		}
		pending[seq] = true

		wait := p.Interval
		if i == req.Count-1 {
			wait = p.ReplyTimeout
		}

		kind, err := p.awaitReply(conn, dst, pending, time.Now().Add(wait))
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if err != nil {
			p.logger.Debug().Err(err).Int("size", req.Size).Msg("read failed")
			return done()
		}

		switch kind {
		case replyEcho:
			out.Accepted = true
			p.logger.Debug().Int("size", req.Size).Int("seq", seq).Msg("echo reply")
			return done()
		case replyFragNeeded:
			return done()
		}
	}

	return done()
}

// awaitReply reads from conn until an echo reply from dst matching a pending
// sequence number, a fragmentation-needed error, or the deadline.
func (p *NativeProber) awaitReply(conn net.PacketConn, dst net.IP, pending map[int]bool, deadline time.Time) (replyKind, error) {
	if err := conn.SetReadDeadline(deadline); err != nil {
		return replyOther, err
	}

	buf := make([]byte, 65536)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return replyOther, nil
			}
			return replyOther, err
		}

		kind := classifyReply(buf[:n], p.id, pending)
		switch kind {
		case replyEcho:
			if ipAddr, ok := peer.(*net.IPAddr); ok && !ipAddr.IP.Equal(dst) {
				continue
			}
			return kind, nil
		case replyFragNeeded:
			if mtu, ok := ParseMTUFromICMP(buf[:n]); ok {
				p.logger.Debug().Int("next_hop_mtu", mtu).Msg("fragmentation needed")
			}
			return kind, nil
		}
	}
}

func (p *NativeProber) nextSeq() int {
	p.seq = (p.seq + 1) & 0xffff
	return p.seq
}

// EchoRequest builds an ICMP echo request carrying size payload bytes.
func EchoRequest(id, seq, size int) ([]byte, error) {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: data,
		},
	}
	return msg.Marshal(nil)
}

// classifyReply inspects an ICMP message (IP header already stripped).
func classifyReply(b []byte, id int, pending map[int]bool) replyKind {
	if len(b) < icmpEchoHeaderLen {
		return replyOther
	}

	if b[0] == 3 && b[1] == 4 {
		if quotedEchoID(b) == id {
			return replyFragNeeded
		}
		return replyOther
	}

	msg, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), b)
	if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
		return replyOther
	}
	echo, ok := msg.Body.(*icmp.Echo)
	if !ok || echo.ID != id || !pending[echo.Seq] {
		return replyOther
	}
	return replyEcho
}

// quotedEchoID returns the echo identifier from the original datagram quoted
// in an ICMP error, or -1.
func quotedEchoID(b []byte) int {
	quoted := b[icmpEchoHeaderLen:]
	if len(quoted) < ipv4.HeaderLen {
		return -1
	}
	ihl := int(quoted[0]&0x0f) * 4
	if ihl < ipv4.HeaderLen || len(quoted) < ihl+icmpEchoHeaderLen {
		return -1
	}
	echo := quoted[ihl:]
	if echo[0] != byte(ipv4.ICMPTypeEcho) {
		return -1
	}
	return int(binary.BigEndian.Uint16(echo[4:6]))
}

// ParseMTUFromICMP extracts the next-hop MTU from an ICMP Destination
// Unreachable (Fragmentation Needed) message.
//
//	Type (1) | Code (1) | Checksum (2) | unused (2) | Next-Hop MTU (2) | original datagram
//
// Returns 0 and false if b is not such a message or carries no MTU.
func ParseMTUFromICMP(b []byte) (int, bool) {
	if len(b) < icmpEchoHeaderLen {
		return 0, false
	}
	if b[0] != 3 || b[1] != 4 {
		return 0, false
	}

	mtu := int(binary.BigEndian.Uint16(b[6:8]))
	// RFC 1191: routers that predate it send 0.
	if mtu == 0 {
		return 0, false
	}
	return mtu, true
}

// openDontFragment opens a raw ICMP socket with path MTU discovery forced on,
// so the kernel sets DF and never fragments locally.
func openDontFragment() (*net.IPConn, error) {
	c, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, &ConfigError{Kind: ErrPermissionDenied, Err: err}
		}
		return nil, fmt.Errorf("open raw socket: %w", err)
	}
	conn := c.(*net.IPConn)

	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = setDontFragment(fd)
	}); err != nil {
		conn.Close()
		return nil, err
	}
	if sockErr != nil {
		conn.Close()
		return nil, fmt.Errorf("set don't fragment: %w", sockErr)
	}
	return conn, nil
}

// resolveIPv4 resolves a hostname or IP string to an IPv4 address.
func resolveIPv4(target string) (net.IP, error) {
	if ip := net.ParseIP(target); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, fmt.Errorf("%s is not an IPv4 address", target)
	}

	ips, err := net.LookupIP(target)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return nil, errors.New("no IPv4 addresses found for hostname")
}

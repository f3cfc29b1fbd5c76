package upstream

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "refused",
			err:  fmt.Errorf("do: %w", syscall.ECONNREFUSED),
			want: ConnectFailed,
		},
		{
			name: "host unreachable",
			err:  fmt.Errorf("do: %w", syscall.EHOSTUNREACH),
			want: ConnectFailed,
		},
		{
			name: "dial op error",
			err:  &net.OpError{Op: "dial", Err: errors.New("no route")},
			want: ConnectFailed,
		},
		{
			name: "dns failure",
			err:  &net.DNSError{Err: "no such host", Name: "inverter.local"},
			want: ConnectFailed,
		},
		{
			name: "url timeout",
			err:  &url.Error{Op: "Get", URL: "http://x", Err: timeoutError{}},
			want: Timeout,
		},
		{
			name: "other transport error",
			err:  errors.New("unexpected EOF"),
			want: ProtocolError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("inverter", "getOnOff", tt.err)
			if got.Kind != tt.want {
				t.Errorf("kind = %v, want %v", got.Kind, tt.want)
			}
			if !errors.Is(got, tt.err) && got.Err != tt.err {
				t.Errorf("classified error does not wrap the cause")
			}
		})
	}
}

func TestUnreachable(t *testing.T) {
	connect := &Error{Source: "inverter", Op: "getOnOff", Kind: ConnectFailed, Err: errors.New("refused")}
	if !Unreachable(connect) {
		t.Error("ConnectFailed should be unreachable")
	}
	if !Unreachable(fmt.Errorf("probe: %w", connect)) {
		t.Error("wrapped ConnectFailed should be unreachable")
	}

	timeout := &Error{Source: "weather", Op: "current", Kind: Timeout, Err: errors.New("deadline")}
	if !Unreachable(timeout) {
		t.Error("Timeout should be unreachable")
	}

	decode := &Error{Source: "inverter", Op: "getOnOff", Kind: Decode, Err: errors.New("bad json")}
	if Unreachable(decode) {
		t.Error("Decode should not be unreachable")
	}

	if Unreachable(errors.New("plain")) {
		t.Error("plain errors should not be unreachable")
	}
}

package dex

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// stubCaller returns canned replies keyed by 4-byte selector and records every call.
type stubCaller struct {
	mu      sync.Mutex
	calls   []ethereum.CallMsg
	replies map[[4]byte][]byte
	err     error
}

func newStubCaller() *stubCaller {
	return &stubCaller{replies: make(map[[4]byte][]byte)}
}

func (s *stubCaller) reply(selector []byte, data []byte) *stubCaller {
	var key [4]byte
	copy(key[:], selector)
	s.replies[key] = data
	return s
}

func (s *stubCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, msg)
	if s.err != nil {
		return nil, s.err
	}
	var key [4]byte
	copy(key[:], msg.Data)
	return s.replies[key], nil
}

func (s *stubCaller) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubCaller) lastTo() common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 || s.calls[len(s.calls)-1].To == nil {
		return common.Address{}
	}
	return *s.calls[len(s.calls)-1].To
}

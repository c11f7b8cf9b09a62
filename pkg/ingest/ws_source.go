package ingest

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/solmev/coreengine/pkg/core"
)

// WsSource is a websocket-based StreamSource, standing in for the gRPC
// firehose spec.md §6 describes, built on the teacher's own
// github.com/gagliardetto/solana-go dependency. It opens one
// ProgramSubscribe per owner program and fans every notification into a
// single AccountUpdate channel.
type WsSource struct {
	endpoint string
	client   *ws.Client
	subs     []*ws.ProgramSubscription

	accounts chan AccountUpdate
	errs     chan error
}

// NewWsSource dials endpoint eagerly; Subscribe opens per-program
// subscriptions against the dialed connection.
func NewWsSource(ctx context.Context, endpoint string) (*WsSource, error) {
	client, err := ws.Connect(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("ingest: dial ws %s: %w", endpoint, err)
	}
	return &WsSource{endpoint: endpoint, client: client}, nil
}

// Subscribe implements StreamSource. The pending-transaction half of the
// upstream schema (spec.md §6) has no websocket equivalent in the
// gagliardetto/solana-go client, so the returned tx channel is always
// empty for this transport; a future gRPC/Geyser source would populate it.
func (s *WsSource) Subscribe(ctx context.Context, programs []core.Address, vaults []core.Address) (<-chan AccountUpdate, <-chan TxUpdate, <-chan error, error) {
	s.accounts = make(chan AccountUpdate, 1024)
	s.errs = make(chan error, 1)
	txs := make(chan TxUpdate)

	for _, program := range programs {
		sub, err := s.client.ProgramSubscribeWithOpts(program.PublicKey(), rpc.CommitmentProcessed, solana.EncodingBase64, nil)
		if err != nil {
			close(s.errs)
			return nil, nil, nil, fmt.Errorf("ingest: program subscribe %s: %w", program, err)
		}
		s.subs = append(s.subs, sub)
		go forwardProgram(ctx, sub, program, s.accounts, s.errs)
	}
	for _, v := range vaults {
		if err := s.AddVault(ctx, v); err != nil {
			close(s.errs)
			return nil, nil, nil, fmt.Errorf("ingest: account subscribe %s: %w", v, err)
		}
	}

	return s.accounts, txs, s.errs, nil
}

// AddVault implements StreamSource by opening an additional account
// subscription against the already-connected client and forwarding into
// the same channel Subscribe returned.
func (s *WsSource) AddVault(ctx context.Context, addr core.Address) error {
	sub, err := s.client.AccountSubscribe(addr.PublicKey(), rpc.CommitmentProcessed)
	if err != nil {
		return err
	}
	go forwardAccount(ctx, sub, addr, s.accounts, s.errs)
	return nil
}

// Close implements StreamSource.
func (s *WsSource) Close() error {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	return s.client.Close()
}

func forwardProgram(ctx context.Context, sub *ws.ProgramSubscription, program core.Address, out chan<- AccountUpdate, errs chan<- error) {
	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			select {
			case errs <- err:
			default:
			}
			return
		}
		val := got.Value
		out <- AccountUpdate{
			Owner:  program,
			Pubkey: core.AddressFromPublicKey(val.Pubkey),
			Data:   val.Account.Data.GetBinary(),
			Slot:   got.Context.Slot,
		}
	}
}

func forwardAccount(ctx context.Context, sub *ws.AccountSubscription, addr core.Address, out chan<- AccountUpdate, errs chan<- error) {
	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			select {
			case errs <- err:
			default:
			}
			return
		}
		out <- AccountUpdate{
			Owner:  core.ProgramSplToken,
			Pubkey: addr,
			Data:   got.Value.Data.GetBinary(),
			Slot:   got.Context.Slot,
		}
	}
}

package voter

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	pkgerrors "github.com/pkg/errors"
	"github.com/sethgrid/pester"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
)

const (
	RPCMethodListVoters = "Governance.ListVoters"
	RPCMethodIsVoter    = "Governance.IsVoter"

	// HopsHeader carries the nested lookup count to the remote node.
	HopsHeader = "X-Gasmanager-Hops"
)

// ListVotersArgs and friends are shared with the JSON-RPC service.
type ListVotersArgs struct{}

type ListVotersReply struct {
	Voters []common.Address `json:"voters"`
}

type IsVoterArgs struct {
	Address common.Address `json:"address"`
}

type IsVoterReply struct {
	IsVoter bool `json:"is_voter"`
}

// HttpDoer is satisfied by `*http.Client` and `*pester.Client`.
type HttpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewRetryClient returns a pester client retrying failed requests with a
// linear backoff.
func NewRetryClient(timeout time.Duration, maxRetries int) *pester.Client {
	client := pester.New()
	client.Timeout = timeout
	client.MaxRetries = maxRetries
	client.Backoff = pester.LinearBackoff
	client.KeepLog = false

	return client
}

// CallRPC sends one JSON-RPC 2.0 request to `endpoint` and decodes the
// result into `reply`. Errors raised by a remote engine come back as
// `*errors.Error`.
func CallRPC(ctx context.Context, doer HttpDoer, endpoint, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode %s", method)
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrapf(err, "invalid endpoint, %q", endpoint)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HopsHeader, strconv.Itoa(Hops(ctx)))

	resp, err := doer.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to call %s on %s", method, endpoint)
	}
	defer resp.Body.Close()

	if err = json2.DecodeClientResponse(resp.Body, reply); err != nil {
		if jerr, ok := err.(*json2.Error); ok {
			if e := errors.Parse(jerr.Message); e != nil {
				return e
			}
		}
		return pkgerrors.Wrapf(err, "bad response of %s from %s", method, endpoint)
	}

	return nil
}

// RPCSource asks the JSON-RPC `Governance` service of another node.
type RPCSource struct {
	Endpoint string

	doer HttpDoer
}

func NewRPCSource(endpoint string, doer HttpDoer) *RPCSource {
	if doer == nil {
		doer = NewRetryClient(common.DefaultSourceTimeout, 2)
	}

	return &RPCSource{Endpoint: endpoint, doer: doer}
}

func (r *RPCSource) ListVoters(ctx context.Context) ([]common.Address, error) {
	var reply ListVotersReply
	if err := CallRPC(ctx, r.doer, r.Endpoint, RPCMethodListVoters, &ListVotersArgs{}, &reply); err != nil {
		return nil, err
	}

	return reply.Voters, nil
}

func (r *RPCSource) IsVoter(ctx context.Context, a common.Address) (bool, error) {
	var reply IsVoterReply
	if err := CallRPC(ctx, r.doer, r.Endpoint, RPCMethodIsVoter, &IsVoterArgs{Address: a}, &reply); err != nil {
		return false, err
	}

	return reply.IsVoter, nil
}

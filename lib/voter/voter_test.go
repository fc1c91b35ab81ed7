package voter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/require"

	"boscoin.io/gasmanager/lib/common"
	"boscoin.io/gasmanager/lib/errors"
)

func testAddress(n int) common.Address {
	return common.MustParseAddress(fmt.Sprintf("0x%040x", n+1))
}

type failingSource struct{}

func (failingSource) ListVoters(context.Context) ([]common.Address, error) {
	return nil, fmt.Errorf("broken")
}

func (failingSource) IsVoter(context.Context, common.Address) (bool, error) {
	return false, fmt.Errorf("broken")
}

type panickingSource struct{}

func (panickingSource) ListVoters(context.Context) ([]common.Address, error) {
	panic("list")
}

func (panickingSource) IsVoter(context.Context, common.Address) (bool, error) {
	panic("is")
}

type slowSource struct {
	delay time.Duration
}

func (s slowSource) ListVoters(ctx context.Context) ([]common.Address, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
	return []common.Address{testAddress(9)}, nil
}

func (s slowSource) IsVoter(ctx context.Context, _ common.Address) (bool, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
	return true, nil
}

// onlyListSource answers the list but fails the membership query.
type onlyListSource struct {
	StaticSource
}

func (*onlyListSource) IsVoter(context.Context, common.Address) (bool, error) {
	return false, fmt.Errorf("not implemented")
}

// nestedSource asks itself again, like two engines registered as each
// other's source.
type nestedSource struct {
	adapter *Adapter
	calls   int
}

func (n *nestedSource) ListVoters(ctx context.Context) ([]common.Address, error) {
	n.calls++
	return n.adapter.ListVoters(ctx, testAddress(7), n), nil
}

func (n *nestedSource) IsVoter(ctx context.Context, a common.Address) (bool, error) {
	return n.adapter.IsVoter(ctx, testAddress(7), n, a), nil
}

func TestAdapterSwallowsFailures(t *testing.T) {
	adapter := NewAdapter(50 * time.Millisecond)
	ctx := context.Background()

	for _, s := range []Source{failingSource{}, panickingSource{}, slowSource{delay: time.Second}} {
		require.Nil(t, adapter.ListVoters(ctx, testAddress(0), s))
		require.False(t, adapter.IsVoter(ctx, testAddress(0), s, testAddress(1)))
	}

	static := NewStaticSource(testAddress(1), testAddress(2))
	require.Equal(t, []common.Address{testAddress(1), testAddress(2)}, adapter.ListVoters(ctx, testAddress(0), static))
	require.True(t, adapter.IsVoter(ctx, testAddress(0), static, testAddress(2)))
	require.False(t, adapter.IsVoter(ctx, testAddress(0), static, testAddress(3)))
}

func TestAdapterBreaksCycles(t *testing.T) {
	adapter := NewAdapter(time.Second)
	nested := &nestedSource{adapter: adapter}

	require.Nil(t, adapter.ListVoters(context.Background(), testAddress(7), nested))
	require.Equal(t, common.MaxSourceHops, nested.calls)

	ctx := WithHops(context.Background(), common.MaxSourceHops)
	require.Nil(t, adapter.ListVoters(ctx, testAddress(0), NewStaticSource(testAddress(1))))
}

func TestAdapterProbe(t *testing.T) {
	adapter := NewAdapter(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, adapter.Probe(ctx, testAddress(0), NewStaticSource(testAddress(1))))
	require.NoError(t, adapter.Probe(ctx, testAddress(0), NewStaticSource()))

	for _, s := range []Source{failingSource{}, panickingSource{}, slowSource{delay: time.Second}, &onlyListSource{}} {
		err := adapter.Probe(ctx, testAddress(0), s)
		require.True(t, errors.SourceProbeFailed.Is(err), "%T", s)
	}
}

func TestDirectory(t *testing.T) {
	d := NewDirectory()

	require.True(t, errors.ZeroAddress.Is(d.Register(common.ZeroAddress, NewStaticSource())))
	require.True(t, errors.UnknownVoterSource.Is(d.Register(testAddress(1), nil)))

	require.NoError(t, d.Register(testAddress(2), NewStaticSource()))
	require.NoError(t, d.Register(testAddress(1), NewStaticSource()))

	_, ok := d.Resolve(testAddress(1))
	require.True(t, ok)
	require.Equal(t, []common.Address{testAddress(1), testAddress(2)}, d.Addresses())

	d.Unregister(testAddress(1))
	_, ok = d.Resolve(testAddress(1))
	require.False(t, ok)
}

type testGovernanceService struct {
	voters []common.Address
	hops   []string
}

func (s *testGovernanceService) ListVoters(r *http.Request, args *ListVotersArgs, reply *ListVotersReply) error {
	s.hops = append(s.hops, r.Header.Get(HopsHeader))
	reply.Voters = s.voters
	return nil
}

func (s *testGovernanceService) IsVoter(r *http.Request, args *IsVoterArgs, reply *IsVoterReply) error {
	if common.IsZeroAddress(args.Address) {
		return errors.ZeroAddress
	}
	_, reply.IsVoter = common.InAddresses(s.voters, args.Address)
	return nil
}

func TestRPCSource(t *testing.T) {
	service := &testGovernanceService{voters: []common.Address{testAddress(1), testAddress(2)}}

	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	require.NoError(t, server.RegisterService(service, "Governance"))

	ts := httptest.NewServer(server)
	defer ts.Close()

	source := NewRPCSource(ts.URL, NewRetryClient(time.Second, 1))
	ctx := context.Background()

	voters, err := source.ListVoters(ctx)
	require.NoError(t, err)
	require.Equal(t, service.voters, voters)

	ok, err := source.IsVoter(ctx, testAddress(2))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = source.IsVoter(ctx, testAddress(3))
	require.NoError(t, err)
	require.False(t, ok)

	// the coded error of the remote side comes back as it is
	_, err = source.IsVoter(ctx, common.ZeroAddress)
	require.True(t, errors.ZeroAddress.Is(err))

	adapter := NewAdapter(time.Second)
	require.Equal(t, service.voters, adapter.ListVoters(ctx, testAddress(0), source))
	require.Equal(t, "1", service.hops[len(service.hops)-1], "the hop count travels with the request")
}

func TestRPCSourceUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	source := NewRPCSource(url, NewRetryClient(100*time.Millisecond, 1))
	_, err := source.ListVoters(context.Background())
	require.Error(t, err)

	adapter := NewAdapter(time.Second)
	require.Nil(t, adapter.ListVoters(context.Background(), testAddress(0), source))
	require.Error(t, adapter.Probe(context.Background(), testAddress(0), source))
}

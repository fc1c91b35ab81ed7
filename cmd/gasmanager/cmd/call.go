package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/gasmanager/cmd/gasmanager/common"
	"boscoin.io/gasmanager/lib/common"
	gmerrors "boscoin.io/gasmanager/lib/errors"
	"boscoin.io/gasmanager/lib/rpc"
	"boscoin.io/gasmanager/lib/voter"
)

var (
	flagEndpoint   string = common.GetENVValue("GASMANAGER_ENDPOINT", "http://"+rpc.DefaultBind+rpc.PathRPC)
	flagFormat     string = common.GetENVValue("GASMANAGER_FORMAT", "yaml")
	flagTimeout    string = common.GetENVValue("GASMANAGER_TIMEOUT", "5s")
	flagMaxRetries int    = 2
)

func init() {
	callCmd := &cobra.Command{
		Use:   "call <method> [<json params>]",
		Short: "Call a JSON-RPC method, like 'Governance.ListVoters'",
		Long: "Call a JSON-RPC method of a running server. A method without service is\n" +
			"one of the 'Governance' service. The params are a JSON object, '{}' by default.",
		Args: cobra.RangeArgs(1, 2),
		Run: func(c *cobra.Command, args []string) {
			if _, found := cmdcommon.DefaultEncodes[flagFormat]; !found {
				cmdcommon.PrintFlagsError(c, "--format", errors.Errorf("unknown format, %q", flagFormat))
			}

			timeout, err := time.ParseDuration(flagTimeout)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--timeout", err)
			}

			var params string
			if len(args) > 1 {
				params = args[1]
			}

			if err = Call(os.Stdout, flagEndpoint, args[0], params, timeout); err != nil {
				if e, ok := err.(*gmerrors.Error); ok {
					encodeJSONValue(flagFormat, e, os.Stderr)
					os.Exit(1)
				}
				cmdcommon.PrintError(c, err)
			}
		},
	}

	callCmd.Flags().StringVar(&flagEndpoint, "endpoint", flagEndpoint, "json-rpc endpoint of the server")
	callCmd.Flags().StringVar(&flagFormat, "format", flagFormat, "output format, {yaml, json, prettyjson}")
	callCmd.Flags().StringVar(&flagTimeout, "timeout", flagTimeout, "timeout of one request")
	callCmd.Flags().IntVar(&flagMaxRetries, "max-retries", flagMaxRetries, "retries of a failed request")

	rootCmd.AddCommand(callCmd)
}

func methodName(method string) string {
	if strings.Contains(method, ".") {
		return method
	}

	return rpc.ServiceGovernance + "." + method
}

func callParams(params string) (json.RawMessage, error) {
	params = strings.TrimSpace(params)
	if len(params) < 1 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid([]byte(params)) {
		return nil, errors.Errorf("params are not valid json, %q", params)
	}

	return json.RawMessage(params), nil
}

// encodeJSONValue re-reads `v` as plain json values, so every format
// follows the json field names.
func encodeJSONValue(format string, v interface{}, w io.Writer) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var plain interface{}
	if err = json.Unmarshal(b, &plain); err != nil {
		return err
	}

	return cmdcommon.EncodeTo(format, plain, w)
}

// Call sends `method` with `params` to `endpoint` and writes the result to
// `w` in `flagFormat`. Engine errors are returned as `*errors.Error`.
func Call(w io.Writer, endpoint, method, params string, timeout time.Duration) error {
	args, err := callParams(params)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := voter.NewRetryClient(timeout, flagMaxRetries)

	var result json.RawMessage
	if err = voter.CallRPC(ctx, client, endpoint, methodName(method), args, &result); err != nil {
		return err
	}

	return encodeJSONValue(flagFormat, result, w)
}

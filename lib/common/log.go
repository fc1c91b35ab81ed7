package common

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	logging "github.com/inconshreveable/log15"
	isatty "github.com/mattn/go-isatty"

	"boscoin.io/gasmanager/lib/errors"
)

var (
	DefaultLogLevel   logging.Lvl     = logging.LvlInfo
	DefaultLogHandler logging.Handler = logging.StreamHandler(os.Stdout, logging.TerminalFormat())
)

// StdoutLogOutput names the standard output as a log output.
const StdoutLogOutput = "<stdout>"

func SetLogging(logger logging.Logger, level logging.Lvl, handler logging.Handler) {
	logger.SetHandler(logging.LvlFilterHandler(level, handler))
}

// NewLogHandler writes json records to the file `output`. Without one it
// writes to the standard output, in the terminal format on a tty.
func NewLogHandler(output string) (logging.Handler, error) {
	if len(output) > 0 && output != StdoutLogOutput {
		return logging.FileHandler(output, JSONFormat(false))
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		return logging.StreamHandler(os.Stdout, logging.TerminalFormat()), nil
	}

	return logging.StreamHandler(os.Stdout, JSONFormat(false)), nil
}

// logErrorKey carries what a record could not encode.
const logErrorKey = "LOG15_ERROR"

// logValue gives addresses, targets and amounts their text form. A nil
// pointer is "nil".
func logValue(value interface{}) interface{} {
	if v := reflect.ValueOf(value); v.Kind() == reflect.Ptr && v.IsNil() {
		return "nil"
	}

	switch v := value.(type) {
	case *errors.Error:
		return v
	case Address:
		return v.Hex()
	case []Address:
		l := make([]string, len(v))
		for i, a := range v {
			l[i] = a.Hex()
		}
		return l
	case Target:
		return v.Hex()
	case Amount:
		return v.String()
	case time.Time:
		return FormatISO8601(v)
	case time.Duration:
		return v.String()
	case json.Marshaler:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}

	return value
}

func recordProps(r *logging.Record) map[string]interface{} {
	props := map[string]interface{}{
		r.KeyNames.Time: FormatISO8601(r.Time),
		r.KeyNames.Lvl:  r.Lvl.String(),
		r.KeyNames.Msg:  r.Msg,
	}

	for i := 0; i+1 < len(r.Ctx); i += 2 {
		k, ok := r.Ctx[i].(string)
		if !ok {
			props[logErrorKey] = fmt.Sprintf("%+v is not a string key", r.Ctx[i])
			continue
		}
		props[k] = logValue(r.Ctx[i+1])
	}

	return props
}

// JSONFormat writes each record as one json object on its own line.
func JSONFormat(pretty bool) logging.Format {
	marshal := json.Marshal
	if pretty {
		marshal = func(v interface{}) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	return logging.FormatFunc(func(r *logging.Record) []byte {
		b, err := marshal(recordProps(r))
		if err != nil {
			b, _ = marshal(map[string]string{logErrorKey: err.Error()})
		}

		return append(b, '\n')
	})
}

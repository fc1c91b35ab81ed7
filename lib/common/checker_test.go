package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecker(t *testing.T) {
	limit := 10
	funcs := []CheckerFunc{}
	var dones []interface{}
	for i := 0; i < limit; i++ {
		f := func(checker Checker, args ...interface{}) error {
			dones = append(dones, checker)
			return nil
		}
		funcs = append(funcs, f)
	}

	checker := &DefaultChecker{funcs}
	err := RunChecker(checker, DefaultDeferFunc)
	require.NoError(t, err)
	require.Equal(t, limit, len(dones), "some funcs were not executed")
}

type CheckerWithProperties struct {
	DefaultChecker

	P0 int
}

func TestCheckerWithProperties(t *testing.T) {
	funcs := []CheckerFunc{}
	f0 := func(c Checker, args ...interface{}) error {
		checker := c.(*CheckerWithProperties)
		checker.P0 = 99
		return nil
	}
	funcs = append(funcs, f0)

	f1 := func(c Checker, args ...interface{}) error {
		checker := c.(*CheckerWithProperties)
		if checker.P0 != 99 {
			return errors.New("failed to set property in Checker")
		}
		return nil
	}
	funcs = append(funcs, f1)

	checker := &CheckerWithProperties{DefaultChecker: DefaultChecker{funcs}}
	require.NoError(t, RunChecker(checker, DefaultDeferFunc))
}

func TestCheckerStopAndError(t *testing.T) {
	var ran []int
	mark := func(i int, err error) CheckerFunc {
		return func(Checker, ...interface{}) error {
			ran = append(ran, i)
			return err
		}
	}

	{ // stop ends the chain without error
		ran = nil
		checker := &DefaultChecker{[]CheckerFunc{mark(0, nil), mark(1, CheckerStop{"done"}), mark(2, nil)}}
		require.NoError(t, RunChecker(checker, nil))
		require.Equal(t, []int{0, 1}, ran)
	}

	{ // error ends the chain with the error
		ran = nil
		failed := errors.New("failed")
		var deferred []error
		deferFunc := func(_ int, _ Checker, err error) {
			deferred = append(deferred, err)
		}
		checker := &DefaultChecker{[]CheckerFunc{mark(0, nil), mark(1, failed), mark(2, nil)}}
		require.Equal(t, failed, RunChecker(checker, deferFunc))
		require.Equal(t, []int{0, 1}, ran)
		require.Equal(t, []error{nil, failed}, deferred)
	}
}

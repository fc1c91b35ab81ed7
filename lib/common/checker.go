package common

type Checker interface {
	GetFuncs() []CheckerFunc
}

type CheckerDeferFunc func(int, Checker, error)

var DefaultDeferFunc CheckerDeferFunc = func(int, Checker, error) {}

type CheckerFunc func(Checker, ...interface{}) error

type DefaultChecker struct {
	Funcs []CheckerFunc
}

func (c *DefaultChecker) GetFuncs() []CheckerFunc {
	return c.Funcs
}

// CheckerStop ends the checker chain early without failing it.
type CheckerStop struct {
	Message string
}

func (c CheckerStop) Error() string {
	return c.Message
}

// RunChecker runs the funcs of `checker` in order and stops at the first
// error. A `CheckerStop` stops the chain and is not returned.
func RunChecker(checker Checker, deferFunc CheckerDeferFunc, args ...interface{}) error {
	if deferFunc == nil {
		deferFunc = DefaultDeferFunc
	}

	var err error
	for i, f := range checker.GetFuncs() {
		err = f(checker, args...)
		deferFunc(i, checker, err)
		if err == nil {
			continue
		}
		if _, ok := err.(CheckerStop); ok {
			return nil
		}
		return err
	}
	return nil
}

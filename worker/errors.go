package worker

// Error is returned by Worker implementations when a lifecycle step fails.
// Daemons propagate it unchanged.
type Error struct {
	Op  string
	Err error
}

// NewError returns an Error for the failed operation op.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

func (o *Error) Error() string {
	if o.Err == nil {
		return "worker failed to " + o.Op
	}

	return "worker failed to " + o.Op + " - " + o.Err.Error()
}

func (o *Error) Unwrap() error {
	return o.Err
}

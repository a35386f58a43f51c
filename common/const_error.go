package common

// ConstError is an error type for defining immutable error constants.
// Packages declare their sentinels as
//
//	const ErrSomething = common.ConstError("something failed")
//
// and wrap them with fmt.Errorf("%w: ...") to attach details, so that callers
// can classify failures using errors.Is.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

package sentinel

var _ error = Error("")

// Error is a string-backed error. Declaring sentinels as Error constants
// instead of errors.New variables keeps them from being reassigned, and
// errors.Is still matches them through %w chains because Error is comparable.
type Error string

func (e Error) Error() string {
	return string(e)
}

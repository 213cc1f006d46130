package sentinel

// Compile-time check that Error implements the error interface.
var _ error = Error("")

// Error is a sentinel error backed by a string constant. Sentinels built
// with errors.New live in vars and can be reassigned; declaring them as
// consts of this type rules that out.
//
// Error is comparable, so errors.Is matches it through wrapped chains with
// the default == comparison; no Is method is needed.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

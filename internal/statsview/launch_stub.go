//go:build !statsview

package statsview

// Launch reports ErrUnavailable once addr has been checked.
func Launch(addr string) (*Server, error) {
	if _, err := pageURL(addr); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}

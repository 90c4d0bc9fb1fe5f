//go:build !linux

package cmdlets

func interfaceAddr(string) (string, error) {
	return "", errNoAddress
}

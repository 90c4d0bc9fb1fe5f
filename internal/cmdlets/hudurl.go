package cmdlets

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/mdp/qrterminal/v3"

	"github.com/gizmo-platform/parker/pkg/config"
)

var errNoAddress = errors.New("no usable address")

// hudURL works out the address a phone on the same network would use
// to reach the status server.
func hudURL(cfg *config.Config) (string, error) {
	host, port, err := net.SplitHostPort(cfg.StatusAddr)
	if err != nil {
		return "", err
	}
	if host == "" || host == "0.0.0.0" {
		host, err = interfaceAddr(cfg.StatusInterface)
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, port)), nil
}

// printHUDCode prints the status page address along with a QR code
// for it.
func printHUDCode(cfg *config.Config, w io.Writer) {
	url, err := hudURL(cfg)
	if err != nil {
		appLogger.Warn("Could not work out the status page address", "error", err)
		return
	}
	fmt.Fprintf(w, "Status page: %s\n", url)
	qrterminal.Generate(url, qrterminal.L, w)
}

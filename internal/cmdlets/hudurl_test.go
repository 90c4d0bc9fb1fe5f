package cmdlets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-platform/parker/pkg/config"
)

func TestHUDURL(t *testing.T) {
	cfg := config.Default()
	cfg.StatusAddr = "10.0.0.5:8080"
	url, err := hudURL(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080/", url)

	cfg.StatusAddr = "nonsense"
	_, err = hudURL(cfg)
	assert.Error(t, err)

	cfg.StatusAddr = ":8080"
	cfg.StatusInterface = "does-not-exist0"
	_, err = hudURL(cfg)
	assert.Error(t, err)
}

func TestPrintHUDCode(t *testing.T) {
	cfg := config.Default()
	cfg.StatusAddr = "192.168.1.20:8080"
	var buf bytes.Buffer
	printHUDCode(cfg, &buf)
	assert.Contains(t, buf.String(), "Status page: http://192.168.1.20:8080/")
	assert.Greater(t, buf.Len(), 200)
}

func TestManeuverList(t *testing.T) {
	assert.Equal(t, "U_Turn, Left_Parking, Right_Parking, Left_Exit, Right_Exit", maneuverList())
}

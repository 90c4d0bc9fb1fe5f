package eventstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeliversEvents(t *testing.T) {
	mck := clock.NewMock()
	es := New(hclog.NewNullLogger(), WithClock(mck), WithRunID("run-1"))
	es.PublishStateChange("LINE_FOLLOWING", "COLOR_DETECTED", "LEFT")

	srv := httptest.NewServer(http.HandlerFunc(es.Handler))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, srv.URL, nil)
	require.NoError(t, err)
	defer c.CloseNow()

	// The last state is replayed on connect.
	_, msg, err := c.Read(ctx)
	require.NoError(t, err)
	var sc EventStateChange
	require.NoError(t, json.Unmarshal(msg, &sc))
	assert.Equal(t, EventTypeStateChange, sc.Type)
	assert.Equal(t, "run-1", sc.Run)
	assert.Equal(t, "COLOR_DETECTED", sc.To)
	assert.Equal(t, "LEFT", sc.Side)
	assert.True(t, sc.Time.Equal(mck.Now()))

	es.PublishDetection("blue", "RIGHT")
	_, msg, err = c.Read(ctx)
	require.NoError(t, err)
	var d EventDetection
	require.NoError(t, json.Unmarshal(msg, &d))
	assert.Equal(t, EventTypeDetection, d.Type)
	assert.Equal(t, "blue", d.Color)
	assert.Equal(t, "RIGHT", d.Side)

	es.PublishError(errors.New("camera unplugged"))
	_, msg, err = c.Read(ctx)
	require.NoError(t, err)
	var e EventError
	require.NoError(t, json.Unmarshal(msg, &e))
	assert.Equal(t, "camera unplugged", e.Error)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	es := New(hclog.NewNullLogger())
	assert.NotEmpty(t, es.RunID())
	assert.Nil(t, es.LastState())

	es.PublishLogLine("hello")
	es.PublishManeuver("U_Turn", "abc")
	es.PublishStateChange("PARKED", "LINE_FOLLOWING", "")
	assert.NotNil(t, es.LastState())
}

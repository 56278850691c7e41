package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connPair returns the server side of a live connection and the dialled client side.
func connPair(t *testing.T) (*ws.Conn, *ws.Conn) {
	t.Helper()
	serverConns := make(chan *ws.Conn, 1)
	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	client, resp, err := ws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-serverConns:
		return conn, client
	case <-time.After(readTimeout):
		t.Fatal("server side of connection never arrived")
		return nil, nil
	}
}

func TestClientWriter_DeliversFrames(t *testing.T) {
	server, client := connPair(t)
	cw := newClientWriter(server, clockwork.NewFakeClockAt(time.Now()), nil)
	t.Cleanup(cw.stop)

	require.NoError(t, cw.send([]byte(`{"type":"reset_card"}`)))

	assert.Equal(t, msgResetCard, readFrame(t, client).Type)
}

func TestClientWriter_SendAfterStop(t *testing.T) {
	server, _ := connPair(t)
	cw := newClientWriter(server, clockwork.NewFakeClockAt(time.Now()), nil)

	cw.stop()

	assert.ErrorIs(t, cw.send([]byte("{}")), errWriterClosed)
}

func TestClientWriter_EvictCountsSlowClient(t *testing.T) {
	server, client := connPair(t)
	m := metrics.NewWebSocketMetrics(prometheus.NewRegistry())
	cw := newClientWriter(server, clockwork.NewFakeClockAt(time.Now()), m)

	cw.evict()
	cw.evict()
	cw.stop()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlowClients))
	require.NoError(t, client.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestClientWriter_IdleWarningThenDisconnect(t *testing.T) {
	server, client := connPair(t)
	clock := clockwork.NewFakeClockAt(time.Now())
	cw := newClientWriter(server, clock, nil)
	t.Cleanup(cw.stop)

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(idleWarningTime)
	f := readFrame(t, client)
	require.Equal(t, msgToast, f.Type)
	assert.Contains(t, string(f.Data), "Still there?")

	clock.Advance(idleTimeout - idleWarningTime)
	require.NoError(t, client.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestClientWriter_StopGracefulSendsCloseCode(t *testing.T) {
	server, client := connPair(t)
	cw := newClientWriter(server, clockwork.NewFakeClockAt(time.Now()), nil)

	cw.stopGraceful(ws.CloseTryAgainLater, "busy")

	require.NoError(t, client.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := client.ReadMessage()
	assert.True(t, ws.IsCloseError(err, ws.CloseTryAgainLater), "got %v", err)
}

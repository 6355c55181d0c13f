package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenUDP(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, conn.LocalAddr().String()
}

func readLine(t *testing.T, conn *net.UDPConn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1024)
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestClientCountEmitsLine(t *testing.T) {
	server, addr := listenUDP(t)

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		Prefix:     "leadscreen.",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Count("engine.batch.processed", 3, map[string]string{"stage": "enrich"})

	line := readLine(t, server)
	assert.Equal(t, "leadscreen.engine.batch.processed:3|c|#env:test,stage:enrich", line)
}

func TestClientTimingEmitsMilliseconds(t *testing.T) {
	server, addr := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Timing("engine.stage.duration", 1500*time.Millisecond, nil)

	assert.Equal(t, "engine.stage.duration:1500|ms", readLine(t, server))
}

func TestClientDisabledDoesNotDial(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:1"})
	require.NoError(t, err)

	// Writes on a disabled client are no-ops.
	client.Count("x", 1, nil)
	client.Gauge("y", 2, nil)
	assert.NoError(t, client.Close())
}

func TestClientBlankAddressDisables(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)
	client.Count("x", 1, nil)
	assert.NoError(t, client.Close())
}

func TestNormalizeMetricName(t *testing.T) {
	assert.Equal(t, "a.b_c", normalizeMetricName("a..b/c"))
	assert.Equal(t, "a_b", normalizeMetricName(" a b "))
	assert.Equal(t, "", normalizeMetricName("   "))
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConnectionGauge(t *testing.T) {
	before := testutil.ToFloat64(ActiveWebSocketConnections)
	IncConnection()
	if got := testutil.ToFloat64(ActiveWebSocketConnections); got != before+1 {
		t.Errorf("expected ActiveWebSocketConnections to increase by 1, got %v (was %v)", got, before)
	}
	DecConnection()
	if got := testutil.ToFloat64(ActiveWebSocketConnections); got != before {
		t.Errorf("expected ActiveWebSocketConnections to return to %v, got %v", before, got)
	}
}

func TestVerbsRelayedCounter(t *testing.T) {
	VerbsRelayed.WithLabelValues("OFFER", "relayed").Inc()
	val := testutil.ToFloat64(VerbsRelayed.WithLabelValues("OFFER", "relayed"))
	if val < 1 {
		t.Errorf("expected VerbsRelayed to be at least 1, got %v", val)
	}
}

func TestRoomGCSweepsCounter(t *testing.T) {
	RoomGCSweeps.WithLabelValues("removed").Inc()
	val := testutil.ToFloat64(RoomGCSweeps.WithLabelValues("removed"))
	if val < 1 {
		t.Errorf("expected RoomGCSweeps to be at least 1, got %v", val)
	}
}

func TestAdmissionRejectionsCounter(t *testing.T) {
	AdmissionRejections.WithLabelValues("room_full").Inc()
	val := testutil.ToFloat64(AdmissionRejections.WithLabelValues("room_full"))
	if val < 1 {
		t.Errorf("expected AdmissionRejections to be at least 1, got %v", val)
	}
}

func TestRedisOperationsTotal(t *testing.T) {
	RedisOperationsTotal.WithLabelValues("get", "success").Inc()
	val := testutil.ToFloat64(RedisOperationsTotal.WithLabelValues("get", "success"))
	if val < 1 {
		t.Errorf("expected RedisOperationsTotal to be at least 1, got %v", val)
	}
}

func TestRedisOperationDurationNoPanic(t *testing.T) {
	RedisOperationDuration.WithLabelValues("get").Observe(0.1)
}

package influx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

func TestPointLineProtocol(t *testing.T) {
	cropID := "crop_1"
	reading := &models.SensorReading{
		ID:           "rd_1",
		Measurements: models.Measurements{AirTemp: 23.5, WaterTemp: 15.5, Humidity: 65, PH: 6.1, TDS: 750},
		Status:       models.NormalStatus(),
		CropID:       &cropID,
		CreatedAt:    time.Unix(1700000000, 0).UTC(),
	}
	reading.Status.WaterTemp = models.SeverityCritical

	line := write.PointToLineProtocol(Point(reading), time.Second)

	if !strings.HasPrefix(line, "sensor_reading,crop_id=crop_1 ") {
		t.Errorf("unexpected measurement/tags: %s", line)
	}
	for _, want := range []string{
		"waterTemp=15.5",
		`waterTemp_status="critical"`,
		"tds=750",
		`ph_status="normal"`,
		" 1700000000",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestPointWithoutCrop(t *testing.T) {
	reading := &models.SensorReading{Status: models.NormalStatus(), CreatedAt: time.Unix(0, 0)}
	line := write.PointToLineProtocol(Point(reading), time.Second)
	if strings.Contains(line, "crop_id") {
		t.Errorf("unexpected crop tag in %q", line)
	}
}

func TestReadingMirrorCountsWrites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := influxdb2.NewClient(srv.URL, "token")
	defer client.Close()
	mirror := NewReadingMirror(client, "hydro", "readings")

	reading := &models.SensorReading{Status: models.NormalStatus(), CreatedAt: time.Unix(1700000000, 0)}
	mirror.WriteReading(reading)
	mirror.WriteReading(reading)
	mirror.Flush()

	if got := mirror.Written(); got != 2 {
		t.Errorf("Written() = %d, want 2", got)
	}
	if age := mirror.LastErrorAge(); age != 0 {
		t.Errorf("LastErrorAge() = %v, want 0", age)
	}
}

package discovery

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "homeassistant", NodeID: "plantsense-01"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "sensor config",
			got:  topics.SensorConfig("soil_moisture"),
			want: "homeassistant/sensor/plantsense-01/soil_moisture/config",
		},
		{
			name: "sensor state",
			got:  topics.SensorState("soil_moisture"),
			want: "homeassistant/sensor/plantsense-01/soil_moisture/state",
		},
		{
			name: "availability",
			got:  topics.Availability(),
			want: "homeassistant/sensor/plantsense-01/availability",
		},
		{
			name: "status",
			got:  topics.Status(),
			want: "homeassistant/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopics_CustomPrefix(t *testing.T) {
	topics := Topics{Prefix: "ha-disc", NodeID: "greenhouse"}

	if got, want := topics.SensorConfig("temp"), "ha-disc/sensor/greenhouse/temp/config"; got != want {
		t.Errorf("SensorConfig() = %q, want %q", got, want)
	}
	if got, want := topics.Status(), "ha-disc/status"; got != want {
		t.Errorf("Status() = %q, want %q", got, want)
	}
}

func TestSensor_DisplayName(t *testing.T) {
	s := Sensor{ObjectID: "soil_moisture"}
	if got := s.DisplayName(); got != "soil_moisture" {
		t.Errorf("DisplayName() = %q, want object_id fallback", got)
	}

	s.Name = "Soil Moisture"
	if got := s.DisplayName(); got != "Soil Moisture" {
		t.Errorf("DisplayName() = %q, want %q", got, "Soil Moisture")
	}
}

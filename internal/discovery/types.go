package discovery

// Device is the shared device description every announced entity belongs to.
// It becomes the nested "device" block of each config payload, which is how
// Home Assistant groups entities under one device.
type Device struct {
	// Identifier is the stable device identifier. Published as a single
	// string under "identifiers".
	Identifier string

	Name         string
	Manufacturer string
	Model        string
	SWVersion    string
}

// Sensor describes one sensor entity to announce.
//
// Only ObjectID is mandatory; empty optional fields are omitted from the
// payload entirely rather than published as empty strings.
type Sensor struct {
	// ObjectID is the per-device unique entity identifier, used as the
	// object_id segment of the discovery topic.
	ObjectID string

	// Name is the display name. Defaults to ObjectID when empty.
	Name string

	// DeviceClass is a Home Assistant device class (temperature, humidity,
	// battery, moisture, ...).
	DeviceClass string

	// StateClass is measurement, total or total_increasing.
	StateClass string

	// Unit is the unit of measurement.
	Unit string

	// Icon is a Material Design icon reference (mdi:water-percent).
	Icon string

	// ExpireAfter marks the entity unavailable after this many seconds
	// without a state update. 0 disables expiry and omits the field.
	ExpireAfter int

	// ForceUpdate makes Home Assistant record every state update, even when
	// the value is unchanged. False omits the field.
	ForceUpdate bool
}

// DisplayName returns the name to announce: Name, or ObjectID when unset.
func (s Sensor) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ObjectID
}
